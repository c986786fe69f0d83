// Package pkg provides the libraries behind termtree, the ontology
// term-hierarchy diagrammer.
//
// # Overview
//
// termtree turns a curation spreadsheet, together with the terms it imports
// (dependencies) and the terms defined on top of it (derived), into a
// pruned, ranked diagram of the term hierarchy. The pkg directory is
// organized into these areas:
//
//  1. [core] - Domain logic (terms, graph, pruning, ranking, layout, drawing)
//  2. [source] - Where external terms come from (files, lookup service, MongoDB)
//  3. [cache] - Storage of fetched term data (file, memory, Redis)
//  4. [pipeline] - Orchestration (build → layout → render)
//  5. [graph] - Serialization types for graphs and layouts
//  6. [api] - HTTP API over the pipeline
//
// # Architecture
//
// The data flow through termtree:
//
//	Spreadsheet rows + dependency/derived terms
//	         ↓
//	    [core/term] package (merge terms, resolve parents and relations)
//	         ↓
//	    [core/build] package (assemble the term graph)
//	         ↓
//	    [core/prune] + [core/rank] packages (drop unrelated terms, assign depths)
//	         ↓
//	    [core/render] packages (tree layout or Graphviz nodelink)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
// Build and draw a sheet with in-memory terms:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/termtree/pkg/pipeline"
//	    "github.com/matzehuels/termtree/pkg/source"
//	)
//
//	runner := pipeline.NewRunner(source.StaticSource{Snapshot: snap}, nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Input{Rows: rows},
//	    pipeline.Options{Formats: []string{pipeline.FormatSVG}})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
//   - [core/digraph]: directed multigraph of terms with typed edges
//   - [core/term]: term records, sheet parsing, parent and relation resolution
//   - [core/palette]: curation-status colors
//   - [core/render/tree/layout]: forest layout with tidy-tree placement
//   - [core/render/nodelink]: ranked Graphviz DOT output
//   - [config]: TOML config file and TERMTREE_* environment
//   - [errors]: coded errors shared by the CLI and the API
//   - [observability]: pipeline, cache and source hooks
//
// [core]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core
// [source]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/graph
// [api]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/api
// [core/term]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/term
// [core/build]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/build
// [core/prune]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/prune
// [core/rank]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/rank
// [core/render]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/render
// [core/digraph]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/digraph
// [core/palette]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/palette
// [core/render/tree/layout]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/render/tree/layout
// [core/render/nodelink]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/core/render/nodelink
// [config]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/termtree/pkg/observability
package pkg
