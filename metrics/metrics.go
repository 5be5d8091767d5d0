package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anjiri1684/teacheron/apperrors"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teacheron_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teacheron_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	JobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teacheron_jobs_created_total",
		Help: "Jobs posted by students.",
	})

	JobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teacheron_job_transitions_total",
		Help: "Job status transitions by target status.",
	}, []string{"status"})

	BidsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teacheron_bids_submitted_total",
		Help: "Bids submitted by tutors.",
	})

	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teacheron_reviews_created_total",
		Help: "Reviews written by students.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teacheron_messages_sent_total",
		Help: "Messages sent between users.",
	})

	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teacheron_online_users",
		Help: "Users with at least one open presence websocket connection.",
	})
)

// Middleware records request counts and latency by matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperrors.HTTPStatus(err)
			}
		}
		route := c.Route().Path
		HTTPRequests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
