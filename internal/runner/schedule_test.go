package runner

import (
	"strings"
	"testing"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{name: "nightly", expr: "0 2 * * *"},
		{name: "every 15 minutes", expr: "*/15 * * * *"},
		{name: "descriptor", expr: "@hourly"},
		{name: "every minute too tight", expr: "* * * * *", wantErr: "minimum interval"},
		{name: "garbage", expr: "not-a-schedule", wantErr: "invalid cron expression"},
		{name: "empty", expr: "", wantErr: "invalid cron expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.expr)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateSchedule(%q) error = %v", tt.expr, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateSchedule(%q) error = %v, want substring %q", tt.expr, err, tt.wantErr)
			}
		})
	}
}
