package surface

// Tx is an atomic edit session over a Buffer. All operations performed
// through it hold the buffer's write lock; if the session function returns
// an error, every applied operation is rolled back in reverse order.
// Change notifications for a committed session are delivered after commit,
// in application order. A rolled-back session notifies nothing.
type Tx struct {
	b       *Buffer
	changes []Change
	undo    []func()
}

// Edit runs fn inside an atomic edit session.
func (b *Buffer) Edit(fn func(*Tx) error) error {
	b.mu.Lock()
	tx := &Tx{b: b}
	err := fn(tx)
	if err != nil {
		tx.rollbackLocked()
		b.mu.Unlock()
		return err
	}
	changes := tx.changes
	b.mu.Unlock()

	for _, ch := range changes {
		b.notifyChange(ch)
	}
	return nil
}

// Len returns the current byte length of the text inside the session.
func (tx *Tx) Len() ByteOffset {
	return ByteOffset(len(tx.b.text))
}

// Text returns the current text inside the session.
func (tx *Tx) Text() string {
	return string(tx.b.text)
}

// Regions returns the regions active inside the session.
func (tx *Tx) Regions() []Region {
	out := make([]Region, len(tx.b.regions))
	copy(out, tx.b.regions)
	return out
}

// Insert inserts text at the given offset.
func (tx *Tx) Insert(offset ByteOffset, text string) (EditResult, error) {
	res, ch, err := tx.b.insertLocked(offset, text)
	if err != nil {
		return EditResult{}, err
	}
	tx.recordChange(ch)
	return res, nil
}

// Delete removes text in the given span.
func (tx *Tx) Delete(span Span) (EditResult, error) {
	res, ch, err := tx.b.deleteLocked(span)
	if err != nil {
		return EditResult{}, err
	}
	tx.recordChange(ch)
	return res, nil
}

// Replace replaces text in the given span with new text.
func (tx *Tx) Replace(span Span, text string) (EditResult, error) {
	res, ch, err := tx.b.replaceLocked(span, text)
	if err != nil {
		return EditResult{}, err
	}
	tx.recordChange(ch)
	return res, nil
}

// AddRegion creates a read-only region over the span.
func (tx *Tx) AddRegion(span Span, policy EdgePolicy) (RegionID, error) {
	id, err := tx.b.addRegionLocked(span, policy)
	if err != nil {
		return 0, err
	}
	tx.undo = append(tx.undo, func() {
		_ = tx.b.removeRegionLocked(id)
	})
	return id, nil
}

// RemoveRegion clears a previously created region.
func (tx *Tx) RemoveRegion(id RegionID) error {
	var removed Region
	found := false
	for _, r := range tx.b.regions {
		if r.ID == id {
			removed = r
			found = true
			break
		}
	}
	if !found {
		return ErrRegionNotFound
	}
	if err := tx.b.removeRegionLocked(id); err != nil {
		return err
	}
	tx.undo = append(tx.undo, func() {
		tx.b.restoreRegionLocked(removed)
	})
	return nil
}

func (tx *Tx) recordChange(ch Change) {
	tx.changes = append(tx.changes, ch)
	tx.undo = append(tx.undo, func() {
		tx.b.applyLocked(ch.Invert())
	})
}

// rollbackLocked unwinds applied operations in reverse order.
func (tx *Tx) rollbackLocked() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.changes = nil
	tx.undo = nil
}
