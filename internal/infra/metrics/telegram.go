package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesReceivedTotal,
		telegramRepliesTotal,
		imageDownloadBytes,
		webhookRequestsTotal,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Incoming updates by classified kind (command/photo/text/ignored/unsupported).",
		},
		[]string{"kind"},
	)

	telegramRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_replies_total",
			Help: "Outbound replies by result (sent/failed).",
		},
		[]string{"result"},
	)

	imageDownloadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_download_bytes",
			Help:    "Size of photos downloaded from Telegram.",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10),
		},
	)

	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Webhook deliveries by outcome (ok/parse_error/unauthorized).",
		},
		[]string{"status"},
	)
)

func IncUpdate(kind string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncReply(sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	telegramRepliesTotal.WithLabelValues(result).Inc()
}

func ObserveImageDownload(bytes int) {
	imageDownloadBytes.Observe(float64(bytes))
}

func IncWebhook(status string) {
	webhookRequestsTotal.WithLabelValues(norm(status)).Inc()
}
