// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lru implements a cache of rendered query plans.
package lru

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/gremsql/graph/sql"
)

var (
	mHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gremsql_plan_cache_hits",
		Help: "Number of rendered plans found in the cache.",
	})
	mMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gremsql_plan_cache_misses",
		Help: "Number of rendered plans missing from the cache.",
	})
)

// Key identifies a rendered plan: a query text in a given language, rendered for a dialect.
type Key struct {
	Dialect string
	Lang    string
	Text    string
}

// Entry is a cached rendering of a traversal.
type Entry struct {
	Plan       *sql.Plan
	Statements []sql.Rendered
}

// Cache implements an LRU cache. A cache with zero size stores nothing.
type Cache struct {
	mu       sync.Mutex
	cache    map[Key]*list.Element
	priority *list.List
	maxSize  int
}

type kv struct {
	key   Key
	value *Entry
}

func New(size int) *Cache {
	return &Cache{
		maxSize:  size,
		priority: list.New(),
		cache:    make(map[Key]*list.Element),
	}
}

// Len returns the number of cached entries.
func (lru *Cache) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return len(lru.cache)
}

func (lru *Cache) Put(key Key, value *Entry) {
	if lru.maxSize <= 0 {
		return
	}
	lru.mu.Lock()
	defer lru.mu.Unlock()
	if e, ok := lru.cache[key]; ok {
		e.Value = kv{key: key, value: value}
		lru.priority.MoveToFront(e)
		return
	}
	if len(lru.cache) >= lru.maxSize {
		last := lru.priority.Remove(lru.priority.Back())
		delete(lru.cache, last.(kv).key)
	}
	lru.priority.PushFront(kv{key: key, value: value})
	lru.cache[key] = lru.priority.Front()
}

func (lru *Cache) Del(key Key) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	e := lru.cache[key]
	if e == nil {
		return
	}
	delete(lru.cache, key)
	lru.priority.Remove(e)
}

func (lru *Cache) Get(key Key) (*Entry, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	if element, ok := lru.cache[key]; ok {
		lru.priority.MoveToFront(element)
		mHits.Inc()
		return element.Value.(kv).value, true
	}
	mMisses.Inc()
	return nil, false
}
