package zonefile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/util"
)

// planIn is the layout of a plan file:
//
//	zone: example.com.
//	changes:
//	  - action: create
//	    name: www
//	    record: {type: A, ttl: 300, values: [192.0.2.1]}
//	  - action: update
//	    name: ""
//	    record: {type: MX, ttl: 3600, values: [{preference: 10, exchange: mx1.example.com.}]}
//	  - action: delete
//	    name: old
//	    record: {type: TXT}
//
// For updates, existing defaults to a record with the same name and type.
type planIn struct {
	Zone    string     `yaml:"zone"`
	Changes []changeIn `yaml:"changes"`
}

type changeIn struct {
	Action   string    `yaml:"action"`
	Name     string    `yaml:"name"`
	Record   recordIn  `yaml:"record"`
	Existing *recordIn `yaml:"existing"`
}

// DecodePlan reads a plan file. Records being created or updated to are
// validated unless lenient is set; records only named for deletion or as the
// old side of an update are never validated, since only their name and type
// are used.
func DecodePlan(r io.Reader, lenient bool) (*domain.Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var in planIn
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("zonefile: empty plan")
		}
		return nil, fmt.Errorf("zonefile: %w", err)
	}
	if strings.TrimSpace(in.Zone) == "" {
		return nil, errors.New("zonefile: plan has no zone")
	}
	if err := util.ValidateZoneName(in.Zone); err != nil {
		return nil, fmt.Errorf("zonefile: %w", err)
	}

	zone := domain.NewZone(in.Zone)
	plan := &domain.Plan{Desired: zone, Changes: make([]domain.Change, 0, len(in.Changes))}

	for i, c := range in.Changes {
		change, err := decodeChange(zone, c, lenient)
		if err != nil {
			return nil, fmt.Errorf("zonefile: change %d: %w", i+1, err)
		}
		plan.Changes = append(plan.Changes, change)
	}
	return plan, nil
}

func decodeChange(zone *domain.Zone, c changeIn, lenient bool) (domain.Change, error) {
	name := c.Name
	if c.Record.Name != nil {
		name = *c.Record.Name
	}
	name = domain.RelativeName(strings.TrimSpace(name))

	switch strings.ToLower(strings.TrimSpace(c.Action)) {
	case "create":
		rec, err := buildRecord(zone, name, c.Record, lenient)
		if err != nil {
			return domain.Change{}, err
		}
		return domain.NewCreate(rec), nil

	case "delete":
		rec, err := buildRecord(zone, name, c.Record, true)
		if err != nil {
			return domain.Change{}, err
		}
		return domain.NewDelete(rec), nil

	case "update":
		rec, err := buildRecord(zone, name, c.Record, lenient)
		if err != nil {
			return domain.Change{}, err
		}
		old := recordIn{Type: c.Record.Type}
		if c.Existing != nil {
			old = *c.Existing
			if old.Type == "" {
				old.Type = c.Record.Type
			}
		}
		existing, err := buildRecord(zone, name, old, true)
		if err != nil {
			return domain.Change{}, err
		}
		return domain.NewUpdate(existing, rec), nil

	default:
		return domain.Change{}, fmt.Errorf("unknown action %q (valid: create, update, delete)", c.Action)
	}
}
