package output

import (
	"fmt"
	"strings"

	"openF1Poll/internal/modules/telemetry/application/port"
)

// Output formats accepted by OpenSink.
const (
	FormatLine = "line"
	FormatCSV  = "csv"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatLine, FormatCSV}
}

// OpenSink opens the file sink for format; an empty format means line output.
func OpenSink(format, path string) (port.RecordSink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatLine:
		return OpenLineSink(path)
	case FormatCSV:
		return NewCSVSink(path), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", port.ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}
