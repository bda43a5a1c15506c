package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric in reg to path in the Prometheus text
// exposition format, replacing the file atomically.
func WriteTextfile(reg *prom.Registry, path string) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
