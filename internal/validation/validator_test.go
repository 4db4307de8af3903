// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package validation

import (
	"strings"
	"testing"
)

type eventRequest struct {
	ContentID  string `validate:"required,max=128"`
	MetricType string `validate:"required,oneof=view like comment share click"`
	Value      *int64 `validate:"omitempty,gt=0"`
}

func int64Ptr(v int64) *int64 { return &v }

func TestValidateStruct_Valid(t *testing.T) {
	req := eventRequest{
		ContentID:  "post-42",
		MetricType: "view",
		Value:      int64Ptr(1),
	}

	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid request, got: %v", err)
	}
}

func TestValidateStruct_OmittedOptional(t *testing.T) {
	req := eventRequest{
		ContentID:  "post-42",
		MetricType: "like",
	}

	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected nil Value to pass omitempty, got: %v", err)
	}
}

func TestValidateStruct_Errors(t *testing.T) {
	tests := []struct {
		name      string
		req       eventRequest
		wantField string
		wantTag   string
	}{
		{
			name:      "missing content id",
			req:       eventRequest{MetricType: "view"},
			wantField: "ContentID",
			wantTag:   "required",
		},
		{
			name:      "unknown metric type",
			req:       eventRequest{ContentID: "post-1", MetricType: "impression"},
			wantField: "MetricType",
			wantTag:   "oneof",
		},
		{
			name:      "non-positive value",
			req:       eventRequest{ContentID: "post-1", MetricType: "view", Value: int64Ptr(0)},
			wantField: "Value",
			wantTag:   "gt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}

			if errs[0].Field() != tt.wantField {
				t.Errorf("field = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("tag = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	req := eventRequest{MetricType: "view"}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "ContentID" {
		t.Errorf("details field = %v, want ContentID", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	req := eventRequest{}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "ContentID") || !strings.Contains(apiErr.Message, "MetricType") {
		t.Errorf("combined message missing fields: %q", apiErr.Message)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields detail for multiple errors")
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator returned different instances")
	}
}
