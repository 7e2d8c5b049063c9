package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	created := &recordingHandler{}
	all := &recordingHandler{}

	r.Register(created, procurement.EventTypePurchaseOrderCreated)
	r.Register(all)

	handlers := r.HandlersFor(procurement.EventTypePurchaseOrderCreated)
	assert.Len(t, handlers, 2)
	assert.Same(t, created, handlers[0])
	assert.Same(t, all, handlers[1])

	assert.Len(t, r.HandlersFor("Unknown"), 1)

	r.Unregister(created)
	assert.Len(t, r.HandlersFor(procurement.EventTypePurchaseOrderCreated), 1)

	r.Unregister(all)
	assert.Empty(t, r.HandlersFor(procurement.EventTypePurchaseOrderCreated))
}
