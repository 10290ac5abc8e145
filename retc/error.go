package retc

// HashTableFull - Custom error to inform that a bucket has reached its capacity
type HashTableFull struct {
	msg string
}

// NewHashTableFull - Returns a HashTableFull error with a specific message
func NewHashTableFull(msg string) HashTableFull {
	return HashTableFull{msg: msg}
}

// Error - Used to notify that a bucket is full
func (H HashTableFull) Error() string {
	if H.msg == "" {
		return "hash table full"
	}
	return H.msg
}

// Is - Matches any HashTableFull regardless of message
func (H HashTableFull) Is(target error) bool {
	_, ok := target.(HashTableFull)
	return ok
}

// OutOfBounds - Custom error to inform that a region reaches outside a memory
type OutOfBounds struct {
	msg string
}

// NewOutOfBounds - Returns an OutOfBounds error with a specific message
func NewOutOfBounds(msg string) OutOfBounds {
	return OutOfBounds{msg: msg}
}

// Error - Used to notify that a region is outside a memory
func (O OutOfBounds) Error() string {
	if O.msg == "" {
		return "region out of bounds"
	}
	return O.msg
}

// Is - Matches any OutOfBounds regardless of message
func (O OutOfBounds) Is(target error) bool {
	_, ok := target.(OutOfBounds)
	return ok
}

// InvalidArgument - Custom error to inform that a size, address or configuration value is not acceptable
type InvalidArgument struct {
	msg string
}

// NewInvalidArgument - Returns an InvalidArgument error with a specific message
func NewInvalidArgument(msg string) InvalidArgument {
	return InvalidArgument{msg: msg}
}

// Error - Used to notify an invalid argument
func (I InvalidArgument) Error() string {
	if I.msg == "" {
		return "invalid argument"
	}
	return I.msg
}

// Is - Matches any InvalidArgument regardless of message
func (I InvalidArgument) Is(target error) bool {
	_, ok := target.(InvalidArgument)
	return ok
}

// Timeout - Custom error to inform that an action did not become idle in time
type Timeout struct {
	msg string
}

// NewTimeout - Returns a Timeout error with a specific message
func NewTimeout(msg string) Timeout {
	return Timeout{msg: msg}
}

// Error - Used to notify a timeout
func (T Timeout) Error() string {
	if T.msg == "" {
		return "timeout waiting for action"
	}
	return T.msg
}

// Is - Matches any Timeout regardless of message
func (T Timeout) Is(target error) bool {
	_, ok := target.(Timeout)
	return ok
}
