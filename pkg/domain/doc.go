// Package domain contains the core entities shared by the verifier: contact
// records decoded from an uploaded table, the disposition assigned to each
// record, and the per-batch buckets the records are partitioned into. The types
// are free of transport and storage concerns so every layer can share them.
package domain
