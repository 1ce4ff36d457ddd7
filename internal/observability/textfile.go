package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile dumps the grader collectors in the node-exporter textfile
// format. Short-lived CLI runs use it instead of a scrape endpoint.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
