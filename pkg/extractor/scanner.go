package extractor

import "iter"

// MaxScanDepth bounds how deep Scan descends.
const MaxScanDepth = 64

// Scan walks v depth-first and yields every array it meets, objects' members
// in document order. An array is yielded before its elements are visited;
// object and array elements are then explored for further arrays.
func Scan(v Value) iter.Seq[DiscoveredArray] {
	return func(yield func(DiscoveredArray) bool) {
		walk(v, nil, 0, yield)
	}
}

func walk(v Value, path []string, depth int, yield func(DiscoveredArray) bool) bool {
	if depth > MaxScanDepth {
		return true
	}

	switch v.Kind {
	case KindObject:
		for _, m := range v.Object {
			if !walk(m.Value, childPath(path, m.Key), depth+1, yield) {
				return false
			}
		}
	case KindArray:
		if !yield(DiscoveredArray{Array: v.Array, Path: path}) {
			return false
		}
		for _, item := range v.Array {
			if item.Kind != KindObject && item.Kind != KindArray {
				continue
			}
			if !walk(item, path, depth+1, yield) {
				return false
			}
		}
	}
	return true
}

func childPath(path []string, key string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = key
	return p
}
