package notice_test

import (
	"strings"
	"testing"

	"cadetportal/internal/domain/notice"
)

// TestNotice_Validate tests validation of Notice.
func TestNotice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		notice  notice.Notice
		wantErr error
	}{
		{"valid", notice.Notice{Title: "Camp kit list", Body: "Bring boots."}, nil},
		{"empty title", notice.Notice{Title: " ", Body: "x"}, notice.ErrEmptyTitle},
		{"empty body", notice.Notice{Title: "x", Body: ""}, notice.ErrEmptyBody},
		{"long title", notice.Notice{Title: strings.Repeat("a", 161), Body: "x"}, notice.ErrTitleTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.notice.Validate(); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
