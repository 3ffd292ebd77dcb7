package usage

import (
	"bytes"
	"math/rand/v2"

	"github.com/goccy/go-json"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// sizeSampler keeps a uniform reservoir of records and counts every record
// offered per category, so the average size can be weighted by the real
// category mix rather than by the sample's.
type sizeSampler struct {
	k         int
	seen      int64
	reservoir []entity.EventRecord
	counts    map[string]int64
	rng       *rand.Rand
}

func newSizeSampler(k int, rng *rand.Rand) *sizeSampler {
	if k < 0 {
		k = 0
	}
	return &sizeSampler{k: k, reservoir: make([]entity.EventRecord, 0, k), counts: map[string]int64{}, rng: rng}
}

// clone copia o estado; o rng é compartilhado.
func (s *sizeSampler) clone() *sizeSampler {
	c := &sizeSampler{
		k:         s.k,
		seen:      s.seen,
		reservoir: append(make([]entity.EventRecord, 0, s.k), s.reservoir...),
		counts:    make(map[string]int64, len(s.counts)),
		rng:       s.rng,
	}
	for cat, n := range s.counts {
		c.counts[cat] = n
	}
	return c
}

func (s *sizeSampler) offer(records []entity.EventRecord) {
	for _, r := range records {
		s.seen++
		s.counts[r.Category]++
		if s.k == 0 {
			continue
		}
		if len(s.reservoir) < s.k {
			s.reservoir = append(s.reservoir, r)
			continue
		}
		if j := s.rng.Int64N(s.seen); j < int64(s.k) {
			s.reservoir[j] = r
		}
	}
}

// averageKB retorna (média ponderada em KB, true) ou (0, false) sem amostras.
func (s *sizeSampler) averageKB() (float64, bool) {
	if len(s.reservoir) == 0 {
		return 0, false
	}

	sums := map[string]float64{}
	n := map[string]int{}
	for _, r := range s.reservoir {
		sums[r.Category] += float64(recordSize(r))
		n[r.Category]++
	}

	var weighted, weight float64
	for cat, total := range sums {
		w := float64(s.counts[cat])
		weighted += w * total / float64(n[cat])
		weight += w
	}
	if weight == 0 {
		return 0, false
	}
	return weighted / weight / 1024, true
}

// recordSize mede o evento serializado: a mensagem compactada quando é JSON,
// senão o registro inteiro serializado.
func recordSize(r entity.EventRecord) int {
	if json.Valid([]byte(r.Message)) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(r.Message)); err == nil {
			return buf.Len()
		}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return len(r.Message)
	}
	return len(b)
}
