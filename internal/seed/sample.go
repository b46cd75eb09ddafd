package seed

import (
	"time"

	"github.com/DeafMist/article-votes/backend/internal/models"
)

func mustTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return ts
}

// Sample returns the demo catalogue the service starts with when no seed
// file is configured.
func Sample() []models.Article {
	return []models.Article{
		{
			ID:      "1",
			Title:   "Data fetching strategies with the Next.js App Router",
			Summary: "Best practices for fetching data in the App Router: server and client components, caching and revalidation.",
			Content: "The App Router builds on React Server Components.\n\n### Fetching in server components\nDeclare the component async and await the data directly.\n\n### Caching and revalidation\nUse the `revalidate` option to refresh cached responses on an interval.",
			Author:  "DevMaster",
			Date:    mustTime("2025-07-28T10:00:00Z"),
			Tags:    []string{"Next.js", "Data fetching", "React", "Server components"},
			Votes:   models.VoteTally{Approve: 15, Neutral: 3, Disapprove: 2},
		},
		{
			ID:      "2",
			Title:   "Type-safe state management patterns in TypeScript",
			Summary: "Comparing Redux, Zustand, Jotai and Recoil for keeping large TypeScript codebases type-safe.",
			Content: "State management shapes how robust a TypeScript application is.\n\n### Redux Toolkit\n`createSlice` keeps reducers typed with little boilerplate.\n\n### Zustand\nA hook-based store with a small API surface.",
			Author:  "CodeArchitect",
			Date:    mustTime("2025-07-25T14:30:00Z"),
			Tags:    []string{"TypeScript", "State management", "Redux", "Zustand", "Jotai", "Recoil"},
			Votes:   models.VoteTally{Approve: 18, Neutral: 5, Disapprove: 1},
		},
		{
			ID:      "3",
			Title:   "Building fast web applications with WebAssembly and Rust",
			Summary: "Near-native performance in the browser for compute-heavy tasks, and the Rust to Wasm workflow.",
			Content: "WebAssembly is a binary instruction format for the web.\n\n### Workflow\n1. Write the logic in Rust.\n2. Build it with wasm-pack.\n3. Import the generated bindings from JavaScript.",
			Author:  "WebInnovator",
			Date:    mustTime("2025-07-20T09:15:00Z"),
			Tags:    []string{"WebAssembly", "Rust", "Performance", "Web development"},
			Votes:   models.VoteTally{Approve: 10, Neutral: 8, Disapprove: 5},
		},
		{
			ID:      "4",
			Title:   "Migrating from CSS-in-JS to Tailwind CSS",
			Summary: "Concrete migration steps, trade-offs and the benefits observed on a large project.",
			Content: "CSS-in-JS couples styles to components at a runtime cost.\n\n### Steps\n1. Inventory existing styles.\n2. Install and configure Tailwind.\n3. Migrate component by component.",
			Author:  "StyleGuru",
			Date:    mustTime("2025-07-18T11:45:00Z"),
			Tags:    []string{"CSS", "Tailwind CSS", "CSS-in-JS", "Frontend"},
			Votes:   models.VoteTally{Approve: 14, Neutral: 2, Disapprove: 0},
		},
		{
			ID:      "5",
			Title:   "Adopting a micro-frontend architecture",
			Summary: "Benefits, drawbacks and the practical problems met when splitting a large frontend.",
			Content: "Micro-frontends split a monolithic frontend into independently deployable parts.\n\n### Challenges\n* Routing across applications\n* Shared component libraries\n* Bundle duplication",
			Author:  "Architekt",
			Date:    mustTime("2025-07-15T08:00:00Z"),
			Tags:    []string{"Architecture", "Micro-frontends", "Large-scale development", "Web development"},
			Votes:   models.VoteTally{Approve: 12, Neutral: 4, Disapprove: 3},
		},
	}
}
