package cc

// Reconcile rebuilds a per-key state map after a fresh supported-set
// report. Keys in the new set keep their previous value when one was
// known; new keys start unknown (nil); keys absent from the new set are
// dropped. The old map is not modified.
func Reconcile[K comparable, V any](old map[K]*V, keys []K) map[K]*V {
	out := make(map[K]*V, len(keys))
	for _, k := range keys {
		out[k] = old[k]
	}
	return out
}
