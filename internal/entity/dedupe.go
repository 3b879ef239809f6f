package entity

// Dedupe drops every entity that equals an earlier one, keeping the first occurrence
func (c *Comparator) Dedupe(entities []Entity) ([]Entity, error) {
	out := make([]Entity, 0, len(entities))
	for i := range entities {
		dup, err := c.containsEqual(out, &entities[i])
		if err != nil {
			return nil, err
		}
		if !dup {
			out = append(out, entities[i])
		}
	}
	return out, nil
}

func (c *Comparator) containsEqual(list []Entity, e *Entity) (bool, error) {
	for j := range list {
		if !sameFamily(&list[j], e) {
			continue
		}
		eq, err := c.Equal(&list[j], e)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

// MergeExclusions collapses funnel exclusions covering the same step range.
// An exclusion whose properties contain another's excludes nothing extra and is dropped.
func (c *Comparator) MergeExclusions(exclusions []Entity) ([]Entity, error) {
	kept := make([]Entity, 0, len(exclusions))

next:
	for i := range exclusions {
		candidate := &exclusions[i]
		for j := 0; j < len(kept); j++ {
			if !sameFamily(&kept[j], candidate) || !sameSteps(&kept[j], candidate) {
				continue
			}

			narrower, err := c.IsSuperset(candidate, &kept[j])
			if err != nil {
				return nil, err
			}
			if narrower {
				continue next
			}

			broader, err := c.IsSuperset(&kept[j], candidate)
			if err != nil {
				return nil, err
			}
			if broader {
				kept = append(kept[:j], kept[j+1:]...)
				j--
			}
		}
		kept = append(kept, *candidate)
	}
	return kept, nil
}

func sameFamily(a, b *Entity) bool {
	return a.Kind.family() != familyUnknown && a.Kind.family() == b.Kind.family()
}

func sameSteps(a, b *Entity) bool {
	return intPtrEqual(a.FunnelFromStep, b.FunnelFromStep) && intPtrEqual(a.FunnelToStep, b.FunnelToStep)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
