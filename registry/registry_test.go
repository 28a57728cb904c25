/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"testing"

	"github.com/suparena/docstore/storagemodels"
)

type testOrder struct {
	ID    string `json:"_id,omitempty"`
	Total float64
}

type testInvoice struct {
	ID string `json:"_id,omitempty"`
}

func TestTypeRegistry(t *testing.T) {
	RegisterType("registryTestOrder", func(doc storagemodels.Document) (interface{}, error) {
		id, _ := doc["_id"].(string)
		return &testOrder{ID: id}, nil
	})

	fn, err := GetDecodeFunc("registryTestOrder")
	if err != nil {
		t.Fatalf("GetDecodeFunc failed: %v", err)
	}

	obj, err := fn(storagemodels.Document{"_id": "o1"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	order, ok := obj.(*testOrder)
	if !ok {
		t.Fatalf("expected *testOrder, got %T", obj)
	}
	if order.ID != "o1" {
		t.Fatalf("expected ID o1, got %q", order.ID)
	}
}

func TestTypeRegistryUnknownType(t *testing.T) {
	_, err := GetDecodeFunc("neverRegistered")
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
}

func TestTypeRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()

	RegisterType("registryTestDup", func(doc storagemodels.Document) (interface{}, error) { return nil, nil })
	RegisterType("registryTestDup", func(doc storagemodels.Document) (interface{}, error) { return nil, nil })
}

func TestEntityConfigRegistry(t *testing.T) {
	if _, ok := GetEntityConfig[testInvoice](); ok {
		t.Fatal("expected no config before registration")
	}

	RegisterEntityConfig[testInvoice](EntityConfig{
		Table:  "invoices",
		Fields: []string{"total", "status"},
		Computed: map[string]ComputedField{
			"status": {Fn: func() any { return "draft" }, OnlyEmpty: true},
		},
	})

	cfg, ok := GetEntityConfig[testInvoice]()
	if !ok {
		t.Fatal("expected config after registration")
	}
	if cfg.Table != "invoices" {
		t.Fatalf("expected table invoices, got %q", cfg.Table)
	}
	if len(cfg.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(cfg.Fields))
	}
	if cfg.Computed["status"].Fn() != "draft" {
		t.Fatal("computed field did not evaluate")
	}
}

func TestEntityConfigRegistryConcurrent(t *testing.T) {
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(i int) {
			RegisterEntityConfig[testOrder](EntityConfig{Table: fmt.Sprintf("orders%d", i)})
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		go func() {
			GetEntityConfig[testOrder]()
			done <- true
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}

	if _, ok := GetEntityConfig[testOrder](); !ok {
		t.Fatal("expected a config to win")
	}
}
