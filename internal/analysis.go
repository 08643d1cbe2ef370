// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"cmp"
	"slices"
	"strings"
)

// LoaderStats are the statistics of all invocations of one loader
type LoaderStats struct {
	Name string `json:"name" cbor:"name"`
	Statistics
}

// ChainStats are the statistics of resources processed by the same set of loaders. A resource's
// time runs from the first start to the last end of the loader invocations on it.
type ChainStats struct {
	Loaders []string `json:"loaders" cbor:"loaders"`
	Statistics
}

// Analysis is everything derived from a set of invocation records
type Analysis struct {
	Records         int           `json:"records"`         // completed records
	Open            int           `json:"open"`            // records without an end
	Range           Range         `json:"range"`           // first start to last end
	TotalActiveTime int64         `json:"totalActiveTime"` // time any loader was running
	Loaders         []LoaderStats `json:"loaders"`         // sorted by total active time
	Chains          []ChainStats  `json:"modules"`         // sorted by total active time
}

// AnalyseOptions controls what ends up in an Analysis
type AnalyseOptions struct {
	Top     int      // keep the top N loaders and chains, 0 for all
	Exclude []string // leave out loaders whose name contains any of these
}

// Analyse groups records by loader and by loader chain and computes the statistics of every group.
// Open records are excluded from the statistics and counted.
func Analyse(records []Record, opts AnalyseOptions) Analysis {
	var kept []Record
	for _, rec := range records {
		if !isExcluded(rec.GroupKey, opts.Exclude) {
			kept = append(kept, rec)
		}
	}

	res := Analysis{
		TotalActiveTime: TotalActiveTime(kept),
	}

	first := true
	for _, rec := range kept {
		if !rec.Done {
			res.Open++
			continue
		}
		res.Records++
		if first {
			res.Range = rec.Range()
			first = false
		}
		res.Range.Start = min(res.Range.Start, rec.Start)
		res.Range.End = max(res.Range.End, rec.End)
	}

	for _, g := range GroupBy(kept, func(r Record) Key { return ScalarKey(r.GroupKey) }) {
		res.Loaders = append(res.Loaders, LoaderStats{
			Name:       g.Key.String(),
			Statistics: ComputeStatistics(g.Items),
		})
	}
	slices.SortStableFunc(res.Loaders, func(a, b LoaderStats) int {
		return byActiveTime(a.Statistics, b.Statistics, a.Name, b.Name)
	})

	for _, g := range GroupBy(resourceRecords(kept), resourceChainKey) {
		records := make([]Record, len(g.Items))
		for i, item := range g.Items {
			records[i] = item.Record
		}
		res.Chains = append(res.Chains, ChainStats{
			Loaders:    g.Items[0].loaders,
			Statistics: ComputeStatistics(records),
		})
	}
	slices.SortStableFunc(res.Chains, func(a, b ChainStats) int {
		return byActiveTime(a.Statistics, b.Statistics, strings.Join(a.Loaders, ","), strings.Join(b.Loaders, ","))
	})

	if opts.Top > 0 {
		res.Loaders = res.Loaders[:min(opts.Top, len(res.Loaders))]
		res.Chains = res.Chains[:min(opts.Top, len(res.Chains))]
	}

	return res
}

func byActiveTime(a, b Statistics, aName, bName string) int {
	if c := cmp.Compare(b.TotalActiveTime, a.TotalActiveTime); c != 0 {
		return c
	}
	return strings.Compare(aName, bName)
}

// resourceRecord spans all loader invocations on one resource
type resourceRecord struct {
	Record
	loaders []string
}

// resourceRecords folds the records of every resource into one, in order of first appearance
func resourceRecords(records []Record) []resourceRecord {
	var resources []resourceRecord
	index := make(map[string]int)

	for _, rec := range records {
		idx, found := index[rec.Resource]
		if !found {
			index[rec.Resource] = len(resources)
			resources = append(resources, resourceRecord{
				Record: Record{
					ID:       InvocationID(len(resources)),
					Resource: rec.Resource,
					Start:    rec.Start,
					End:      rec.End,
					Done:     rec.Done,
				},
				loaders: []string{loaderOrNone(rec.GroupKey)},
			})
			continue
		}

		res := &resources[idx]
		res.Start = min(res.Start, rec.Start)
		res.End = max(res.End, rec.End)
		// A resource is done once all loaders on it are
		res.Done = res.Done && rec.Done
		if name := loaderOrNone(rec.GroupKey); !slices.Contains(res.loaders, name) {
			res.loaders = append(res.loaders, name)
		}
	}

	return resources
}

func loaderOrNone(name string) string {
	if name == "" {
		return NoLoadersName
	}
	return name
}

func resourceChainKey(r resourceRecord) Key {
	return SetKey(r.loaders...)
}

// MergeRecords combines the records of several logs. IDs are renumbered since every log
// starts counting from zero.
func MergeRecords(sets ...[]Record) []Record {
	var res []Record
	for _, set := range sets {
		for _, rec := range set {
			rec.ID = InvocationID(len(res))
			res = append(res, rec)
		}
	}
	return res
}
