package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignIns counts sign-in attempts by outcome (recorded, already_signed_in,
// student_not_found).
var SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_signins_total",
	Help: "Sign-in attempts by outcome.",
}, []string{"outcome"})

// ImportedRows counts roster rows applied by bulk imports.
var ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roster_import_rows_total",
	Help: "Roster rows applied by bulk imports.",
}, []string{"kind"})
