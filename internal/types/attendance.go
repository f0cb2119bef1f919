package types

import (
	ierr "github.com/nextstep/nextstep/internal/errors"
)

// AttendanceSource is how a check-in was captured.
type AttendanceSource string

const (
	AttendanceSourceManual AttendanceSource = "MANUAL"
	AttendanceSourceQR     AttendanceSource = "QR"
	AttendanceSourceAuto   AttendanceSource = "AUTO"
)

func (s AttendanceSource) Validate() error {
	switch s {
	case AttendanceSourceManual, AttendanceSourceQR, AttendanceSourceAuto:
		return nil
	default:
		return ierr.NewErrorf("invalid attendance source: %s", s).
			WithHint("Attendance source must be one of: MANUAL, QR, AUTO").
			WithReportableDetails(map[string]any{"source": s}).
			Mark(ierr.ErrValidation)
	}
}
