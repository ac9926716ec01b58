package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	HotelDocumentV1   = "HotelDocument/1.0.0"
	ListingsChangedV1 = "ListingsChangedEvent/1.0.0"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	files := map[string]string{
		HotelDocumentV1:   "schemas/hotel-document.v1.json",
		ListingsChangedV1: "schemas/listings-changed.v1.json",
	}

	for key, path := range files {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read schema %s: %v", path, err)
		}
		if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
			log.Fatalf("failed to add schema %s: %v", path, err)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Fatalf("failed to compile schema %s: %v", path, err)
		}
		compiledSchemas[key] = schema
	}
}

// ValidateEvent проверяет сырое тело сообщения по схеме "тип/версия"
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	v, err := DecodeJSON(body)
	if err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	return ValidateValue(fmt.Sprintf("%s/%s", eventType, eventVersion), v)
}

// DecodeJSON разбирает JSON в универсальный вид; числа остаются json.Number, чтобы "integer" в схеме проверялся точно
func DecodeJSON(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateValue проверяет уже распарсенный JSON (map/slice/float64...) по схеме с ключом key.
func ValidateValue(key string, v interface{}) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' not found", key)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
