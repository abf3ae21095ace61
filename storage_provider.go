package ecs

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

type storageProvider struct {
	mu         sync.RWMutex
	stores     map[ComponentType]ComponentStore
	generation atomic.Uint64
}

func newStorageProvider() *storageProvider {
	return &storageProvider{stores: make(map[ComponentType]ComponentStore)}
}

func (p *storageProvider) RegisterComponent(t ComponentType, strategy StorageStrategy) error {
	if strategy == nil {
		return ErrNilStorageStrategy
	}

	store := strategy.NewStore(t)
	if store == nil {
		return ErrNilComponentStore
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.stores[t]; exists {
		return ErrComponentAlreadyRegistered
	}

	p.stores[t] = store
	return nil
}

func (p *storageProvider) View(t ComponentType) (ComponentView, error) {
	p.mu.RLock()
	store, ok := p.stores[t]
	p.mu.RUnlock()

	if !ok {
		return nil, ErrComponentNotRegistered
	}

	return store, nil
}

func (p *storageProvider) Apply(world *World, commands []Command) error {
	if len(commands) == 0 {
		return nil
	}
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := cmd.Apply(world); err != nil {
			// Commands before this one may already have changed the
			// world, so the batch still counts as a structural change.
			p.generation.Add(1)
			return err
		}
	}
	// Every deferred command in this package is structural (spawn, despawn,
	// add/remove component); a whole batch bumps the generation once rather
	// than per command, which is all the scheduler's cache-invalidation
	// check needs.
	p.generation.Add(1)
	return nil
}

func (p *storageProvider) ArchetypesGeneration() uint64 {
	return p.generation.Load()
}

// Archetypes rebuilds the archetype table from the registered component
// stores. It groups entities by their exact component signature and
// returns the groups ordered by the signature's canonical string form, so
// repeated calls against an unchanged world are deterministic regardless
// of Go's randomized map iteration.
func (p *storageProvider) Archetypes() []Archetype {
	p.mu.RLock()
	defer p.mu.RUnlock()

	signatures := make(map[EntityID][]ComponentType)
	for ctype, store := range p.stores {
		store.Iterate(func(id EntityID, _ any) bool {
			signatures[id] = append(signatures[id], ctype)
			return true
		})
	}

	type group struct {
		components []ComponentType
		entities   []EntityID
	}
	groups := make(map[string]*group)
	for id, types := range signatures {
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		key := archetypeKey(types)
		g, ok := groups[key]
		if !ok {
			g = &group{components: types}
			groups[key] = g
		}
		g.entities = append(g.entities, id)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	archetypes := make([]Archetype, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		sort.Slice(g.entities, func(i, j int) bool {
			a, b := g.entities[i], g.entities[j]
			if a.Index() != b.Index() {
				return a.Index() < b.Index()
			}
			return a.Generation() < b.Generation()
		})
		archetypes = append(archetypes, Archetype{Components: g.components, entities: g.entities})
	}
	return archetypes
}

func archetypeKey(types []ComponentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

var _ StorageProvider = (*storageProvider)(nil)
