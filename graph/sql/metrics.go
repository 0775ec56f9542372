// Copyright 2017 The Cayley Authors. All rights reserved.
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

package sql

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mQuerySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "gremsql_query_seconds",
		Help: "Time to execute a compiled plan.",
	}, []string{"type"})
	mQueryRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gremsql_query_rows",
		Help:    "Number of rows returned by a compiled plan.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"type"})
	mQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gremsql_query_errors",
		Help: "Number of plans that failed to execute.",
	}, []string{"type"})

	mLoadVertices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gremsql_load_vertices",
		Help: "Number of vertices loaded into the database.",
	})
	mLoadEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gremsql_load_edges",
		Help: "Number of edges loaded into the database.",
	})
)
