// Package models contains the GORM persistence models for the portal's tables.
// They are kept apart from the domain aggregates so the domain stays free of
// ORM tags; each model converts with ToDomain / FromDomain.
package models
