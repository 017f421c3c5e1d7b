package uart

// Queued returns the number of bytes waiting for transmission.
func (u *UART) Queued() int { return u.tx.Len() }
