package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocNotifiesObserversWithOrigin(t *testing.T) {
	doc := NewDoc()

	var gotUpdate []byte
	var gotOrigin any
	doc.Observe(func(update []byte, origin any) {
		gotUpdate = update
		gotOrigin = origin
	})

	origin := "local"
	doc.ApplyUpdate([]byte{1, 2, 3}, origin)

	assert.Equal(t, []byte{1, 2, 3}, gotUpdate)
	assert.Equal(t, origin, gotOrigin)
	assert.Len(t, doc.Updates(), 1)
}

func TestDocCopiesUpdates(t *testing.T) {
	doc := NewDoc()

	update := []byte{1, 2, 3}
	doc.ApplyUpdate(update, nil)
	update[0] = 9

	assert.Equal(t, []byte{1, 2, 3}, doc.Updates()[0])
}

func TestDocDestroyIsFinal(t *testing.T) {
	doc := NewDoc()
	doc.ApplyUpdate([]byte{1}, nil)

	doc.Destroy()
	doc.Destroy()

	doc.ApplyUpdate([]byte{2}, nil)
	assert.Empty(t, doc.Updates())
}
