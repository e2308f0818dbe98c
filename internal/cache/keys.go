package cache

import "fmt"

const keyPrefix = "thpt"

// BatchKey caches a batch's metadata
func BatchKey(id string) string {
	return fmt.Sprintf("%s:batch:%s", keyPrefix, id)
}

// ReportKey holds a generated report file for a batch
func ReportKey(id, format string) string {
	return fmt.Sprintf("%s:batch:%s:report:%s", keyPrefix, id, format)
}

// ReportPattern matches every report format cached for a batch
func ReportPattern(id string) string {
	return fmt.Sprintf("%s:batch:%s:report:*", keyPrefix, id)
}
