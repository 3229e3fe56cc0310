package services

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/exosync/internal/cache"
	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/util"
)

const zoneIndexKey = "zones"

type zoneList struct {
	domains []domain.Domain
	ids     map[string]string
}

// zoneIndex maps normalized zone names to provider zone ids. The full zone
// list is fetched once, on first use, and kept for the lifetime of the
// index. A failed fetch is not remembered.
type zoneIndex struct {
	client domain.Client
	cache  *cache.Cache[zoneList]
}

func newZoneIndex(client domain.Client) *zoneIndex {
	return &zoneIndex{client: client, cache: cache.New[zoneList]()}
}

// resolve returns the provider id of the named zone.
func (z *zoneIndex) resolve(ctx context.Context, name string) (string, error) {
	zl, err := z.cache.GetOrFetch(ctx, zoneIndexKey, z.fetch)
	if err != nil {
		return "", err
	}

	id, ok := zl.ids[util.ZoneKey(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownZone, util.EnsureFQDN(name))
	}
	return id, nil
}

// domains returns the provider's zones in the order the provider listed them.
func (z *zoneIndex) domains(ctx context.Context) ([]domain.Domain, error) {
	zl, err := z.cache.GetOrFetch(ctx, zoneIndexKey, z.fetch)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Domain, len(zl.domains))
	copy(out, zl.domains)
	return out, nil
}

func (z *zoneIndex) fetch(ctx context.Context) (zoneList, error) {
	domains, err := z.client.ListDomains(ctx)
	if err != nil {
		return zoneList{}, err
	}

	ids := make(map[string]string, len(domains))
	for _, d := range domains {
		ids[util.ZoneKey(d.Name)] = d.ID
	}
	return zoneList{domains: domains, ids: ids}, nil
}
