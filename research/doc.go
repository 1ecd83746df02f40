// Package research implements the Research strategy (§4.3): plan generation,
// concurrent multi-engine search, URL dedup and scraping, credibility
// scoring, optional semantic rerank, and final synthesis into a
// types.ResearchResult. Every external collaborator (search engine, content
// extractor, completer) is a narrow interface so the pipeline has no
// concrete dependency on a specific provider.
package research
