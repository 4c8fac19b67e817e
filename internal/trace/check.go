package trace

import "fmt"

// CheckCopyDiscipline verifies a full event sequence against the copy-discipline
// contract:
//
//   - only copy-discipline kinds appear;
//   - every slot is constructed at most once and destructed exactly once;
//   - assignments only touch live slots and never change the instance count;
//   - destruction happens in reverse declaration order within the flat scope.
//
// The instance-count invariant follows: the number of Destructed events equals
// the number of slots the scope ever bound, regardless of intervening
// assignments.
func CheckCopyDiscipline(events []Event) error {
	var order []string // construction order
	live := map[string]bool{}
	done := map[string]bool{}

	for i, e := range events {
		switch e.Kind {
		case EventConstructed, EventCopyConstructed, EventMoveConstructed:
			if live[e.Slot] || done[e.Slot] {
				return fmt.Errorf("events[%d]: slot %q constructed twice", i, e.Slot)
			}
			live[e.Slot] = true
			order = append(order, e.Slot)
		case EventCopyAssigned, EventMoveAssigned:
			if !live[e.Slot] {
				return fmt.Errorf("events[%d]: assignment to non-live slot %q", i, e.Slot)
			}
		case EventDestructed:
			if done[e.Slot] {
				return fmt.Errorf("events[%d]: slot %q destructed twice", i, e.Slot)
			}
			if !live[e.Slot] {
				return fmt.Errorf("events[%d]: destruction of never-constructed slot %q", i, e.Slot)
			}
			// Reverse declaration order: the last still-live declared slot goes first.
			for j := len(order) - 1; j >= 0; j-- {
				if done[order[j]] {
					continue
				}
				if order[j] != e.Slot {
					return fmt.Errorf("events[%d]: destruction of %q out of order, expected %q", i, e.Slot, order[j])
				}
				break
			}
			live[e.Slot] = false
			done[e.Slot] = true
		default:
			return fmt.Errorf("events[%d]: kind %q is not a copy-discipline event", i, e.Kind)
		}
	}

	if len(done) != len(order) {
		return fmt.Errorf("scope bound %d slots but destructed %d", len(order), len(done))
	}
	return nil
}

// CheckReplaceDiscipline verifies a full event sequence against the
// replace-discipline contract:
//
//   - only replace-discipline kinds appear;
//   - at every point the live instance count equals constructions minus drops
//     (a silent move-out relocates an instance without changing the count, and
//     a cloned temporary counts as live until it is bound over a dropped slot);
//   - the live count never goes negative;
//   - scope teardown leaves no live instance behind.
func CheckReplaceDiscipline(events []Event) error {
	live := 0

	for i, e := range events {
		switch e.Kind {
		case EventConstructed, EventCloned:
			live++
		case EventDropped:
			live--
			if live < 0 {
				return fmt.Errorf("events[%d]: drop of %q with no live instance", i, e.Slot)
			}
		default:
			return fmt.Errorf("events[%d]: kind %q is not a replace-discipline event", i, e.Kind)
		}
	}

	if live != 0 {
		return fmt.Errorf("%d instances still live after teardown", live)
	}
	return nil
}
