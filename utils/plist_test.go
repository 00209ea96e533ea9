package utils

import (
	"testing"
)

const samplePlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>name</key>
	<string>swipe-right</string>
	<key>version</key>
	<integer>1</integer>
	<key>points</key>
	<array>
		<dict>
			<key>x</key>
			<real>12.5</real>
		</dict>
	</array>
</dict>
</plist>`

func TestConvertPlistToJSON(t *testing.T) {
	var result map[string]interface{}
	err := ConvertPlistToJSON([]byte(samplePlist), &result)
	if err != nil {
		t.Fatalf("ConvertPlistToJSON() error: %v", err)
	}

	if result["name"] != "swipe-right" {
		t.Errorf("name = %v, want %q", result["name"], "swipe-right")
	}
	if result["version"] != float64(1) {
		t.Errorf("version = %v, want 1", result["version"])
	}

	points, ok := result["points"].([]interface{})
	if !ok || len(points) != 1 {
		t.Fatalf("points = %v, want one entry", result["points"])
	}
	if points[0].(map[string]interface{})["x"] != 12.5 {
		t.Errorf("points[0].x = %v, want 12.5", points[0])
	}
}

func TestConvertPlistToJSON_InvalidInput(t *testing.T) {
	var result map[string]interface{}
	err := ConvertPlistToJSON([]byte("<plist><dict><key>broken"), &result)
	if err == nil {
		t.Error("expected error for invalid plist data")
	}
}
