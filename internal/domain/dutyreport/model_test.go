package dutyreport_test

import (
	"testing"

	"cadetportal/internal/domain/dutyreport"
)

// TestReport_Validate tests validation of Report.
func TestReport_Validate(t *testing.T) {
	valid := dutyreport.Report{
		CadetID:   "c1",
		Date:      "2024-03-02",
		DutyType:  "Traffic control",
		Location:  "Main gate",
		StartTime: "08:00",
		EndTime:   "12:30",
	}

	tests := []struct {
		name    string
		mutate  func(r *dutyreport.Report)
		wantErr error
	}{
		{"valid", func(r *dutyreport.Report) {}, nil},
		{"no cadet", func(r *dutyreport.Report) { r.CadetID = "" }, dutyreport.ErrEmptyCadet},
		{"bad date", func(r *dutyreport.Report) { r.Date = "2024/03/02" }, dutyreport.ErrInvalidDate},
		{"no duty type", func(r *dutyreport.Report) { r.DutyType = "" }, dutyreport.ErrEmptyDutyType},
		{"no location", func(r *dutyreport.Report) { r.Location = " " }, dutyreport.ErrEmptyLocation},
		{"bad time", func(r *dutyreport.Report) { r.StartTime = "8am" }, dutyreport.ErrInvalidTime},
		{"end before start", func(r *dutyreport.Report) { r.EndTime = "07:00" }, dutyreport.ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
