package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mjjbox-checkin/lib/scrapers/mjjbox"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/checkin")

// CheckinClient is the single operation the retry loop drives.
type CheckinClient interface {
	CheckinOnce(ctx context.Context) mjjbox.CheckinResult
}

// Notifier delivers a message to the external push channel. Delivery is
// best-effort: errors are logged by the service and never change the
// run's outcome.
type Notifier interface {
	Send(ctx context.Context, title, body string) error
}

// Attempt is one recorded failure, kept so the final notification can
// aggregate every reason in order.
type Attempt struct {
	Index  int
	Reason string
}

type Options struct {
	Username string
	BaseUrl  string
	// total attempts, including the first. defaults to 3.
	Attempts int
	// wait between attempts. defaults to 3 seconds.
	Delay time.Duration
	// when true, every failed attempt sends its own notification in
	// addition to the final aggregate; the default stays silent until
	// the final verdict.
	NotifyOnIntermediateFailure bool
}

type Service struct {
	client   CheckinClient
	notifier Notifier
	options  Options
}

func NewService(client CheckinClient, notifier Notifier, options Options) Service {
	if options.Attempts <= 0 {
		options.Attempts = 3
	}
	if options.Delay <= 0 {
		options.Delay = time.Second * 3
	}
	return Service{
		client:   client,
		notifier: notifier,
		options:  options,
	}
}

// Run drives up to Attempts check-ins with a fixed delay in between.
// It reports whether any attempt succeeded, plus every failed attempt
// in order.
func (s Service) Run(ctx context.Context) (bool, []Attempt) {
	ctx, span := tracer.Start(ctx, "service:Run")
	defer span.End()

	var failures []Attempt
	for i := 1; i <= s.options.Attempts; i++ {
		slog.InfoContext(ctx, "checkin attempt", "attempt", i, "total", s.options.Attempts)

		result := s.client.CheckinOnce(ctx)
		if result.Succeeded {
			slog.InfoContext(ctx, "checkin succeeded", "message", result.Message)
			s.notify(ctx, "mjjbox 签到成功 ✅", s.successBody(result))
			return true, failures
		}

		reason := result.Message
		if reason == "" {
			reason = "未获得失败原因"
		}
		failures = append(failures, Attempt{Index: i, Reason: reason})
		slog.WarnContext(ctx, "checkin attempt failed", "attempt", i, "reason", reason)

		if s.options.NotifyOnIntermediateFailure && i < s.options.Attempts {
			s.notify(
				ctx,
				fmt.Sprintf("mjjbox 签到尝试 %d 失败 ❌", i),
				fmt.Sprintf(
					"用户: %s\n尝试: %d/%d\n原因: %s\n站点: %s",
					s.options.Username, i, s.options.Attempts, reason, s.options.BaseUrl,
				),
			)
		}

		if i < s.options.Attempts {
			time.Sleep(s.options.Delay)
		}
	}

	s.notify(ctx, "mjjbox 签到最终失败 ❌", s.finalFailureBody(failures))
	return false, failures
}

func (s Service) successBody(result mjjbox.CheckinResult) string {
	lines := []string{
		fmt.Sprintf("用户: %s", s.options.Username),
		"结果: 签到成功",
		fmt.Sprintf("详情: %s", result.Message),
	}
	stats := result.Stats
	if stats.TotalCheckins != nil {
		lines = append(lines, fmt.Sprintf("已签到次数: %d", *stats.TotalCheckins))
	}
	if stats.Consecutive != nil {
		lines = append(lines, fmt.Sprintf("连续签到: %d 天", *stats.Consecutive))
	}
	if stats.TotalPoints != nil {
		lines = append(lines, fmt.Sprintf("总积分: %d", *stats.TotalPoints))
	}
	if stats.Gained != nil {
		lines = append(lines, fmt.Sprintf("本次获得: %d 分", *stats.Gained))
	}
	return strings.Join(lines, "\n")
}

func (s Service) finalFailureBody(failures []Attempt) string {
	var reasons []string
	for _, attempt := range failures {
		reasons = append(reasons, fmt.Sprintf("尝试#%d: %s", attempt.Index, attempt.Reason))
	}
	return fmt.Sprintf(
		"用户: %s\n结果: 最终失败（%d 次尝试均失败）\n站点: %s\n\n每次原因汇总:\n%s",
		s.options.Username, s.options.Attempts, s.options.BaseUrl,
		strings.Join(reasons, "\n"),
	)
}

func (s Service) notify(ctx context.Context, title, body string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Send(ctx, title, body)
	if err != nil {
		slog.WarnContext(ctx, "notification delivery failed", "title", title, "err", err)
	}
}
