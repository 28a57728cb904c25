/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/datastore/testmodels"
	"github.com/suparena/docstore/storagemodels"
)

func TestJSONCodecSerialize(t *testing.T) {
	codec := JSONCodec[testmodels.Widget]{}

	t.Run("TagsControlFieldNames", func(t *testing.T) {
		w := &testmodels.Widget{ID: "w1", Name: "gear", Qty: 3, Price: 9.99}
		doc, err := codec.Serialize(w)
		require.NoError(t, err)

		assert.Equal(t, "w1", doc["_id"])
		assert.Equal(t, "gear", doc["name"])
		assert.Equal(t, float64(3), doc["qty"])
		assert.Equal(t, 9.99, doc["price"])
	})

	t.Run("EmptyFieldsOmitted", func(t *testing.T) {
		doc, err := codec.Serialize(&testmodels.Widget{Name: "gear"})
		require.NoError(t, err)

		_, hasID := doc["_id"]
		assert.False(t, hasID)
		_, hasCreated := doc["createdAt"]
		assert.False(t, hasCreated)
	})

	t.Run("TimestampsRenderISO8601", func(t *testing.T) {
		ts := strfmt.DateTime(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))
		doc, err := codec.Serialize(&testmodels.Widget{Name: "gear", CreatedAt: &ts})
		require.NoError(t, err)

		created, ok := doc["createdAt"].(string)
		require.True(t, ok, "timestamp must serialize to a string")
		assert.Equal(t, "2025-03-01T12:30:00.000Z", created)
	})
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := JSONCodec[testmodels.Widget]{}

	ts := strfmt.DateTime(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))
	original := &testmodels.Widget{
		ID:        "w1",
		Name:      "gear",
		Qty:       3,
		Price:     9.99,
		CreatedAt: &ts,
	}

	doc, err := codec.Serialize(original)
	require.NoError(t, err)

	restored, err := codec.Deserialize(doc)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.Qty, restored.Qty)
	assert.Equal(t, original.Price, restored.Price)
	require.NotNil(t, restored.CreatedAt)
	assert.True(t, time.Time(*original.CreatedAt).Equal(time.Time(*restored.CreatedAt)))
}

func TestJSONCodecDeserialize(t *testing.T) {
	codec := JSONCodec[testmodels.Widget]{}

	t.Run("UnknownFieldsIgnored", func(t *testing.T) {
		w, err := codec.Deserialize(storagemodels.Document{
			"_id":     "w1",
			"name":    "gear",
			"unknown": "dropped",
		})
		require.NoError(t, err)
		assert.Equal(t, "w1", w.ID)
		assert.Equal(t, "gear", w.Name)
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		_, err := codec.Deserialize(storagemodels.Document{"qty": "not-a-number"})
		require.Error(t, err)
	})
}
