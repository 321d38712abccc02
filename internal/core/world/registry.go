package world

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/webswing/internal/core/character"
)

// registry spreads actors over shards by id hash so that ticking and
// lookups contend on one shard lock at a time.
type registry struct {
	shards []*shard
}

type shard struct {
	mx     sync.RWMutex
	actors map[string]*character.Character
}

func newRegistry(count int) *registry {
	if count <= 0 {
		count = 16
	}
	r := &registry{shards: make([]*shard, count)}
	for i := range r.shards {
		r.shards[i] = &shard{actors: make(map[string]*character.Character)}
	}
	return r
}

func (r *registry) shardFor(id string) *shard {
	return r.shards[xxhash.Sum64String(id)%uint64(len(r.shards))]
}

// insert adds c unless its id is taken.
func (r *registry) insert(c *character.Character) bool {
	s := r.shardFor(c.ID())
	s.mx.Lock()
	defer s.mx.Unlock()
	if _, ok := s.actors[c.ID()]; ok {
		return false
	}
	s.actors[c.ID()] = c
	return true
}

func (r *registry) remove(id string) (*character.Character, bool) {
	s := r.shardFor(id)
	s.mx.Lock()
	defer s.mx.Unlock()
	c, ok := s.actors[id]
	if ok {
		delete(s.actors, id)
	}
	return c, ok
}

func (r *registry) get(id string) (*character.Character, bool) {
	s := r.shardFor(id)
	s.mx.RLock()
	defer s.mx.RUnlock()
	c, ok := s.actors[id]
	return c, ok
}

// members copies the shard contents so callers can tick without the lock.
func (s *shard) members() []*character.Character {
	s.mx.RLock()
	defer s.mx.RUnlock()
	out := make([]*character.Character, 0, len(s.actors))
	for _, c := range s.actors {
		out = append(out, c)
	}
	return out
}

// all returns every actor ordered by id.
func (r *registry) all() []*character.Character {
	var out []*character.Character
	for _, s := range r.shards {
		out = append(out, s.members()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
