// Package postgres provides a Postgres implementation of the document store,
// vector index and query log ports.
//
// Vectors live in a pgvector column and are ranked in the database with the
// cosine distance operator (<=>); similarity is reported as 1 - distance.
// There is one embedding row per (chunk, model), maintained with
// ON CONFLICT upserts.
package postgres
