package logging

import (
	"errors"
	"testing"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name      string
		attrKey   string
		wantKey   string
		wantValue string
	}{
		{"Service", Service("etl").Key, FieldService, "etl"},
		{"BatchID", BatchID("batch-1").Key, FieldBatchID, "batch-1"},
		{"EventID", EventID("evt_1").Key, FieldEventID, "evt_1"},
		{"Stage", Stage("transform").Key, FieldStage, "transform"},
		{"S3Key", S3Key("raw/b1/events.json").Key, FieldS3Key, "raw/b1/events.json"},
		{"ErrorType", ErrorType("FormatError").Key, FieldErrorType, "FormatError"},
	}

	values := map[string]string{
		"Service":   Service("etl").Value.String(),
		"BatchID":   BatchID("batch-1").Value.String(),
		"EventID":   EventID("evt_1").Value.String(),
		"Stage":     Stage("transform").Value.String(),
		"S3Key":     S3Key("raw/b1/events.json").Value.String(),
		"ErrorType": ErrorType("FormatError").Value.String(),
	}

	for _, tt := range tests {
		if tt.attrKey != tt.wantKey {
			t.Errorf("%s: key = %q, want %q", tt.name, tt.attrKey, tt.wantKey)
		}
		if values[tt.name] != tt.wantValue {
			t.Errorf("%s: value = %q, want %q", tt.name, values[tt.name], tt.wantValue)
		}
	}
}

func TestCount(t *testing.T) {
	attr := Count(42)
	if attr.Key != FieldCount {
		t.Errorf("key = %q, want %q", attr.Key, FieldCount)
	}
	if attr.Value.Int64() != 42 {
		t.Errorf("value = %d, want 42", attr.Value.Int64())
	}
}

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != FieldError {
		t.Errorf("key = %q, want %q", attr.Key, FieldError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestDuration(t *testing.T) {
	attr := Duration(150)
	if attr.Key != FieldDuration {
		t.Errorf("key = %q, want %q", attr.Key, FieldDuration)
	}
	if attr.Value.Int64() != 150 {
		t.Errorf("value = %d, want 150", attr.Value.Int64())
	}
}
