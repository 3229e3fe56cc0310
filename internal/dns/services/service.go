// Package services provides the DNS sync layer.
//
// The Service type wraps a domain.Client and implements the two directions of
// synchronization: Populate reads a zone's raw records from the provider and
// turns them into normalized records, Apply realizes a plan's changes as
// provider create and delete calls. CLI commands construct a Service from a
// resolved client and never call the client directly.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/exosync/internal/auditlog"
	"nathanbeddoewebdev/exosync/internal/cache"
	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/dns/transcode"
	"nathanbeddoewebdev/exosync/internal/util"
)

// Journal records provider calls issued by Apply.
type Journal interface {
	Save(entry *auditlog.Entry) error
}

// Service synchronizes normalized zones with one provider account. It owns a
// zone id index, filled once per Service, and a per-zone record cache that is
// dropped after every Apply targeting the zone.
//
// Populate and Apply are serialized; a Service may be shared between
// goroutines.
type Service struct {
	client  domain.Client
	dialect domain.Dialect
	log     logr.Logger
	journal Journal

	zones   *zoneIndex
	records *cache.Cache[[]domain.RawRecord]

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithDialect selects the wire dialect used to transcode records.
func WithDialect(d domain.Dialect) Option {
	return func(s *Service) {
		s.dialect = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithJournal records every create and delete call issued by Apply.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// New returns a Service backed by the given client.
func New(client domain.Client, opts ...Option) *Service {
	svc := &Service{
		client:  client,
		dialect: domain.DialectV2,
		log:     logr.Discard(),
		zones:   newZoneIndex(client),
		records: cache.New[[]domain.RawRecord](),
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.log = svc.log.WithValues("provider", client.GetDisplayName(), "dialect", svc.dialect.Name)
	return svc
}

// Capabilities declares the record types and features the adapter supports.
func (s *Service) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		Types:                   slices.Clone(domain.SupportedTypes),
		SupportsGeo:             false,
		SupportsRootNS:          true,
		SupportsPoolValueStatus: false,
	}
}

// Zones returns the zones hosted in the provider account.
func (s *Service) Zones(ctx context.Context) ([]domain.Domain, error) {
	return s.zones.domains(ctx)
}

// ZoneID returns the provider id of the named zone. The name is matched
// case-insensitively, with or without trailing dot, in unicode or punycode
// form. Unknown zones fail with domain.ErrUnknownZone.
func (s *Service) ZoneID(ctx context.Context, zone string) (string, error) {
	return s.zones.resolve(ctx, zone)
}

// ZoneRecords returns the zone's raw records, fetching them on first use.
func (s *Service) ZoneRecords(ctx context.Context, zone string) ([]domain.RawRecord, error) {
	return s.records.GetOrFetch(ctx, util.ZoneKey(zone), func(ctx context.Context) ([]domain.RawRecord, error) {
		id, err := s.zones.resolve(ctx, zone)
		if err != nil {
			return nil, err
		}
		s.log.V(1).Info("fetching records", "zone", zone, "zoneID", id)
		return s.client.ListRecords(ctx, id)
	})
}

// Populate adds the provider's records for zone to zone. Records of
// unsupported types are skipped with a log line. A record that cannot be
// decoded aborts the whole call with a *domain.MalformedRecordError.
//
// The result reports whether the zone's records are held in the record
// cache once the fetch is done. target is accepted for symmetry with other
// sources and does not change behavior.
func (s *Service) Populate(ctx context.Context, zone *domain.Zone, target, lenient bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithValues("zone", zone.Name)
	log.V(1).Info("populate", "target", target, "lenient", lenient)

	raw, err := s.ZoneRecords(ctx, zone.Name)
	if err != nil {
		return false, err
	}

	supported := make([]domain.RawRecord, 0, len(raw))
	for _, r := range raw {
		if !transcode.Supports(r.Type) {
			log.Info("skipping unsupported record", "type", r.Type, "name", r.Name)
			continue
		}
		supported = append(supported, r)
	}

	before := zone.Len()
	for _, g := range transcode.GroupRecords(supported) {
		data, err := transcode.Decode(s.dialect, zone.Name, g.Records)
		if err != nil {
			return false, err
		}
		rec, err := domain.NewRecord(zone, g.Name, data, lenient)
		if err != nil {
			return false, err
		}
		if err := zone.AddRecord(rec, lenient); err != nil {
			return false, err
		}
	}

	exists := s.records.Has(util.ZoneKey(zone.Name))
	log.Info("populated", "found", zone.Len()-before, "exists", exists)
	return exists, nil
}

// Apply realizes plan's changes in order. Creates issue one provider call per
// value, deletes remove every raw record matching the existing record's name
// and type, and updates delete before they create. The first failure stops
// the batch; calls already issued are not rolled back. The zone's record
// cache is dropped when Apply returns, whether or not it succeeded.
func (s *Service) Apply(ctx context.Context, plan *domain.Plan) error {
	if plan == nil || plan.Desired == nil {
		return errors.New("plan has no desired zone")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	zone := plan.Desired.Name
	defer s.records.Invalidate(util.ZoneKey(zone))

	log := s.log.WithValues("zone", zone)
	log.V(1).Info("apply", "changes", len(plan.Changes))
	if len(plan.Changes) == 0 {
		return nil
	}

	zoneID, err := s.zones.resolve(ctx, zone)
	if err != nil {
		return err
	}

	for _, change := range plan.Changes {
		log.Info(change.String())

		var err error
		switch change.Kind {
		case domain.ChangeCreate:
			err = s.applyCreate(ctx, zone, zoneID, change.New)
		case domain.ChangeDelete:
			err = s.applyDelete(ctx, zone, zoneID, change.Existing)
		case domain.ChangeUpdate:
			err = s.applyUpdate(ctx, zone, zoneID, change)
		default:
			err = fmt.Errorf("unknown change kind %s", change.Kind)
		}
		if err != nil {
			log.Error(err, "change failed", "change", change.String())
			return err
		}
	}
	return nil
}

func (s *Service) applyCreate(ctx context.Context, zone, zoneID string, r *domain.Record) error {
	if r == nil {
		return errors.New("create change has no new record")
	}

	for opts, err := range transcode.Encode(s.dialect, r) {
		if err != nil {
			return err
		}
		if opts.Name == domain.ApexSentinel {
			opts.Name = s.dialect.ApexName
		}

		start := time.Now()
		id, err := s.client.CreateRecord(ctx, zoneID, opts)
		s.journalCall(ctx, &auditlog.Entry{
			Zone:       zone,
			Action:     auditlog.ActionCreate,
			RecordID:   id,
			RecordName: domain.RawName(r.Name),
			RecordType: string(opts.Type),
			Content:    wireContent(opts),
		}, start, err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyDelete(ctx context.Context, zone, zoneID string, r *domain.Record) error {
	if r == nil {
		return errors.New("delete change has no existing record")
	}

	raw, err := s.ZoneRecords(ctx, zone)
	if err != nil {
		return err
	}

	for _, rr := range raw {
		if domain.RelativeName(rr.Name) != r.Name || rr.Type != r.Type {
			continue
		}

		start := time.Now()
		err := s.client.DeleteRecord(ctx, zoneID, rr.ID)
		s.journalCall(ctx, &auditlog.Entry{
			Zone:       zone,
			Action:     auditlog.ActionDelete,
			RecordID:   rr.ID,
			RecordName: domain.RawName(r.Name),
			RecordType: string(rr.Type),
			Content:    rr.Content,
		}, start, err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyUpdate(ctx context.Context, zone, zoneID string, change domain.Change) error {
	if err := s.applyDelete(ctx, zone, zoneID, change.Existing); err != nil {
		return err
	}
	return s.applyCreate(ctx, zone, zoneID, change.New)
}

// journalCall completes entry with the call's outcome and saves it. A journal
// failure is logged and does not fail the apply.
func (s *Service) journalCall(ctx context.Context, entry *auditlog.Entry, start time.Time, callErr error) {
	if s.journal == nil {
		return
	}

	entry.DurationMs = time.Since(start).Milliseconds()
	entry.Outcome = auditlog.OutcomeSuccess
	if callErr != nil {
		entry.Outcome = auditlog.OutcomeError
		entry.Detail = callErr.Error()
	}
	auditlog.Stamp(ctx, entry)
	if entry.Provider == "" {
		entry.Provider = s.client.GetDisplayName()
	}

	if err := s.journal.Save(entry); err != nil {
		s.log.Error(err, "failed to journal provider call", "action", entry.Action, "zone", entry.Zone)
	}
}

func wireContent(opts domain.CreateRecordOpts) string {
	if opts.Priority == nil {
		return opts.Content
	}
	return fmt.Sprintf("%d %s", *opts.Priority, opts.Content)
}
