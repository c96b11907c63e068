package session

// memberList is an insertion-ordered set of user IDs.
type memberList struct {
	ids []string
}

func (l *memberList) add(id string) bool {
	if l.contains(id) {
		return false
	}
	l.ids = append(l.ids, id)
	return true
}

func (l *memberList) remove(id string) bool {
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (l *memberList) contains(id string) bool {
	for _, v := range l.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (l *memberList) len() int { return len(l.ids) }

func (l *memberList) snapshot() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

func (l *memberList) clear() { l.ids = nil }
