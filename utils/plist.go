package utils

import (
	"encoding/json"
	"fmt"

	"howett.net/plist"
)

// PlistToJSON decodes an XML, binary or OpenStep property list and re-encodes it as JSON
func PlistToJSON(data []byte) ([]byte, error) {
	var decoded interface{}
	if _, err := plist.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse plist: %w", err)
	}

	jsonData, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to convert plist to json: %w", err)
	}
	return jsonData, nil
}

// ConvertPlistToJSON decodes a property list into v using JSON struct tags
func ConvertPlistToJSON(data []byte, v interface{}) error {
	jsonData, err := PlistToJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, v)
}
