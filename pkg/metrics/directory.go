package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

const (
	namespace = "receipts_backend"
	subsystem = "directory"
)

var externalCallsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: subsystem,
	Name:      "api_calls",
	Help:      "Calls made to the Google Workspace Directory API, labeled by HTTP status code. Code 0 means the call failed without an HTTP response.",
}, []string{"status_code"})

func IncExternalCalls(statusCode int) {
	m, err := externalCallsCounter.GetMetricWithLabelValues(strconv.Itoa(statusCode))
	if err != nil {
		log.Warnf("get metric: %v", err)
		return
	}
	m.Inc()
}

// IncExternalCallsByError registers an external call based on the error
// returned from the API client.
func IncExternalCallsByError(err error) {
	googleError := &googleapi.Error{}
	if errors.As(err, &googleError) {
		IncExternalCalls(googleError.Code)
		return
	}
	IncExternalCalls(0)
}
