package siem

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"case-automation/pkg/log"
	"case-automation/pkg/qradar"
	"case-automation/pkg/thehive"
)

// FeederConfig carries the offense-to-alert feed settings.
type FeederConfig struct {
	// AlertSourceName is written as the alert source and used to find
	// previously fed alerts.
	AlertSourceName string
	AlertType       string
	CaseTemplate    string
	// MarkerTag classifies fed alerts as SIEM-sourced downstream.
	MarkerTag string
	// OffenseFilter is an extra API filter anded onto the time window,
	// e.g. "status = \"OPEN\"".
	OffenseFilter string
	// TimeLayout formats offense timestamps in descriptions.
	TimeLayout string
}

// Feeder pulls recently updated offenses and creates or refreshes the
// matching alerts. Unchanged offenses are skipped so their webhooks are
// never re-triggered.
type Feeder struct {
	cfg      FeederConfig
	engine   SearchEngine
	store    AlertStore
	detector ChangeDetector
	pool     Submitter
	l        log.Logger
}

// NewFeeder creates the offense feed.
func NewFeeder(cfg FeederConfig, engine SearchEngine, store AlertStore, detector ChangeDetector, pool Submitter, l log.Logger) *Feeder {
	if cfg.TimeLayout == "" {
		cfg.TimeLayout = "2006-01-02 15:04:05"
	}
	return &Feeder{cfg: cfg, engine: engine, store: store, detector: detector, pool: pool, l: l}
}

// SyncOffenses feeds every offense updated within the window. One
// failing offense never stops the rest; the error reports how many
// failed.
func (f *Feeder) SyncOffenses(ctx context.Context, window time.Duration) (created, updated int, err error) {
	since := time.Now().Add(-window).UnixMilli()
	filter := fmt.Sprintf("last_updated_time >= %d", since)
	if f.cfg.OffenseFilter != "" {
		filter += " and " + f.cfg.OffenseFilter
	}

	offenses, err := f.engine.GetOffenses(ctx, filter)
	if err != nil {
		return 0, 0, fmt.Errorf("list offenses: %w", err)
	}

	var failures int
	for _, offense := range offenses {
		madeNew, changed, err := f.syncOffense(ctx, offense)
		if err != nil {
			f.l.Errorf(ctx, "Offense %d sync failed: %v", offense.ID, err)
			failures++
			continue
		}
		if madeNew {
			created++
		} else if changed {
			updated++
		}
	}

	f.l.Infof(ctx, "Offense sync done: %d created, %d updated, %d failed of %d",
		created, updated, failures, len(offenses))
	if failures > 0 {
		return created, updated, fmt.Errorf("%d of %d offenses failed to sync", failures, len(offenses))
	}
	return created, updated, nil
}

func (f *Feeder) syncOffense(ctx context.Context, offense qradar.Offense) (created, updated bool, err error) {
	candidate := f.buildAlert(ctx, offense)

	existing, err := f.store.FindAlerts(ctx, map[string]any{
		"source":    f.cfg.AlertSourceName,
		"sourceRef": candidate.SourceRef,
	})
	if err != nil {
		return false, false, fmt.Errorf("find alert for offense %d: %w", offense.ID, err)
	}

	if len(existing) == 0 {
		if _, err := f.store.CreateAlert(ctx, candidate); err != nil {
			return false, false, fmt.Errorf("create alert for offense %d: %w", offense.ID, err)
		}
		return true, false, nil
	}

	if !f.detector.HasChanged(ctx, existing[0], candidate) {
		f.l.Debugf(ctx, "Offense %d unchanged, skipping", offense.ID)
		return false, false, nil
	}

	fields := map[string]any{
		"description": candidate.Description,
		"tags":        candidate.Tags,
		"artifacts":   candidate.Artifacts,
	}
	if err := f.store.UpdateAlert(ctx, existing[0].ID, fields); err != nil {
		return false, false, fmt.Errorf("update alert for offense %d: %w", offense.ID, err)
	}
	return false, true, nil
}

func (f *Feeder) buildAlert(ctx context.Context, offense qradar.Offense) thehive.Alert {
	return thehive.Alert{
		Title:        fmt.Sprintf("%s (offense #%d)", firstLine(offense.Description), offense.ID),
		Description:  f.offenseDescription(offense),
		Type:         f.cfg.AlertType,
		Source:       f.cfg.AlertSourceName,
		SourceRef:    strconv.FormatInt(offense.ID, 10),
		Severity:     severityOf(offense.Severity),
		Date:         offense.StartTime,
		CaseTemplate: f.cfg.CaseTemplate,
		Tags:         []string{f.cfg.MarkerTag},
		Artifacts:    f.resolveArtifacts(ctx, offense),
	}
}

// offenseDescription renders the offense summary table. It ends with
// the table end marker so enrichment rows can be inserted later.
func (f *Feeder) offenseDescription(offense qradar.Offense) string {
	started := time.UnixMilli(offense.StartTime).UTC().Format(f.cfg.TimeLayout)

	rows := []struct{ name, value string }{
		{"Description", strings.ReplaceAll(offense.Description, "\n", " ")},
		{"Offense Source", offense.OffenseSource},
		{"Start Time", started},
		{"Credibility", strconv.Itoa(offense.Credibility)},
		{"Relevance", strconv.Itoa(offense.Relevance)},
		{"Severity", strconv.Itoa(offense.Severity)},
	}

	var sb strings.Builder
	sb.WriteString("#### Offense summary\n\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| **%s** | %s |\n", row.name, cellValue(row.value)))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

// resolveArtifacts turns the offense address ids into IP observables.
// Lookups fan out over the worker pool; results are sorted so the
// artifact order is stable across syncs.
func (f *Feeder) resolveArtifacts(ctx context.Context, offense qradar.Offense) []thehive.Observable {
	var mu sync.Mutex
	var out []thehive.Observable
	add := func(o thehive.Observable) {
		mu.Lock()
		out = append(out, o)
		mu.Unlock()
	}

	batch := f.pool.NewBatch()
	for _, id := range offense.SourceAddressIDs {
		batch.Submit(ctx, func(ctx context.Context) {
			ip, err := f.engine.GetSourceAddress(ctx, id)
			if err != nil {
				f.l.Warnf(ctx, "Could not resolve source address %d: %v", id, err)
				return
			}
			add(thehive.Observable{DataType: "ip", Data: ip, Message: "Source IP", Tags: []string{"src"}})
		})
	}
	for _, id := range offense.LocalDestinationAddressIDs {
		batch.Submit(ctx, func(ctx context.Context) {
			ip, err := f.engine.GetLocalDestinationAddress(ctx, id)
			if err != nil {
				f.l.Warnf(ctx, "Could not resolve destination address %d: %v", id, err)
				return
			}
			add(thehive.Observable{DataType: "ip", Data: ip, Message: "Destination IP", Tags: []string{"dst"}})
		})
	}
	batch.Wait()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Message != out[j].Message {
			return out[i].Message < out[j].Message
		}
		return out[i].Data < out[j].Data
	})
	return out
}

func severityOf(siemSeverity int) int {
	switch {
	case siemSeverity <= 3:
		return 1
	case siemSeverity <= 7:
		return 2
	default:
		return 3
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
