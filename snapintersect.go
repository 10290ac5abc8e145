package snapintersect

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gostonefire/snapintersect/hashfunc"
	"github.com/gostonefire/snapintersect/internal/conf"
	"github.com/gostonefire/snapintersect/internal/hash"
	"github.com/gostonefire/snapintersect/internal/hashtable"
	"github.com/gostonefire/snapintersect/internal/memory"
	"github.com/gostonefire/snapintersect/internal/model"
	"github.com/gostonefire/snapintersect/retc"
	"go.uber.org/zap"
)

// RecordWidth - Width in bytes of every record in Table1, Table2 and the result
const RecordWidth = conf.RecordWidth

// BucketCapacity - Max number of Table1 records sharing one hash code
const BucketCapacity = conf.BucketCapacity

// Memory - Byte addressable memory, implemented for both host and card memory
type Memory = memory.Memory

// Region - A contiguous byte region in host or card memory
type Region = model.Region

// Job - The action registers written before each step
type Job = model.Job

// TableStat - Statistics on hash table usage
type TableStat = model.TableStat

// NewMemory - Returns a heap backed memory using buf as its backing store
func NewMemory(buf []byte) Memory {
	return memory.NewArenaFromBytes(buf)
}

// SessionConf - Is a struct to be passed in the call to NewSession and contains configuration for one run.
//   - Host is the host memory the tables are read from and the result is written to
//   - Card is the card memory holding staged tables, the hash table and the result
//   - HashTableAddress is where in card memory the hash table is stored, it must be 64 byte aligned
//   - HashBits is the number of bits in a hash code, 0 gives the default of 16
//   - MaxTransferBytes is the largest chunk moved in one bulk transfer, 0 gives the default of 4096
//   - HashAlgorithm is an optional custom hash function replacing the internal folding hash
//   - Logger is an optional logger, nil gives a no-op logger
type SessionConf struct {
	Host             Memory
	Card             Memory
	HashTableAddress int64
	HashBits         int64
	MaxTransferBytes int64
	HashAlgorithm    hashfunc.HashAlgorithm
	Logger           *zap.Logger
}

// SessionInfo - Information structure containing some information about the session created
//   - RunID identifies the session in logs
//   - NumberOfBuckets is the total number of buckets in the hash table
//   - HashTableAddress is the card memory address of the hash table
//   - HashTableSize is the number of bytes the hash table occupies in card memory
//   - MaxTransferBytes is the largest chunk moved in one bulk transfer
type SessionInfo struct {
	RunID            string
	NumberOfBuckets  int64
	HashTableAddress int64
	HashTableSize    int64
	MaxTransferBytes int64
}

// Session - Owns the card memory, host memory and hash table of one run. A session runs one step at a time,
// steps must not be called concurrently.
type Session struct {
	host             Memory
	card             Memory
	hashTable        *hashtable.HashTable
	maxTransferBytes int64
	runID            string
	logger           *zap.Logger
}

// NewSession - Returns a new session prepared to run the steps of the intersect protocol.
//   - sessionConf is a SessionConf struct with memories and hash table parameters
//
// It returns:
//   - session is a pointer to a Session struct
//   - sessionInfo is a SessionInfo struct containing some data regarding the session created
//   - err is of type retc.InvalidArgument or retc.OutOfBounds if the configuration is not usable, or a standard error
func NewSession(sessionConf SessionConf) (session *Session, sessionInfo SessionInfo, err error) {
	// Check that memories are given
	if sessionConf.Host == nil || sessionConf.Card == nil {
		err = retc.NewInvalidArgument("both host and card memory must be given")
		return
	}

	// Check if max transfer bytes is valid
	if sessionConf.MaxTransferBytes == 0 {
		sessionConf.MaxTransferBytes = conf.DefaultMaxTransferBytes
	}
	if sessionConf.MaxTransferBytes < 0 || sessionConf.MaxTransferBytes%conf.RecordWidth != 0 {
		err = retc.NewInvalidArgument(fmt.Sprintf("max transfer bytes must be a positive multiple of %d", conf.RecordWidth))
		return
	}

	// If no HashAlgorithm was given then use the default internal
	hashAlgorithm := sessionConf.HashAlgorithm
	if hashAlgorithm == nil {
		if sessionConf.HashBits == 0 {
			sessionConf.HashBits = conf.DefaultHashBits
		}
		if sessionConf.HashBits < 1 || sessionConf.HashBits > conf.MaxHashBits {
			err = retc.NewInvalidArgument(fmt.Sprintf("hash bits must be within [1, %d]", conf.MaxHashBits))
			return
		}
		hashAlgorithm = hash.NewFoldHashAlgorithm(sessionConf.HashBits)
	}

	ht, err := hashtable.NewHashTable(sessionConf.Card, sessionConf.HashTableAddress, hashAlgorithm)
	if err != nil {
		err = errors.Wrapf(err, "error while creating hash table")
		return
	}

	logger := sessionConf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New().String()

	session = &Session{
		host:             sessionConf.Host,
		card:             sessionConf.Card,
		hashTable:        ht,
		maxTransferBytes: sessionConf.MaxTransferBytes,
		runID:            runID,
		logger:           logger.With(zap.String("run_id", runID)),
	}

	sp := ht.GetStorageParameters()

	sessionInfo = SessionInfo{
		RunID:            runID,
		NumberOfBuckets:  sp.NumberOfBuckets,
		HashTableAddress: sp.HashTableAddress,
		HashTableSize:    sp.HashTableSize,
		MaxTransferBytes: session.maxTransferBytes,
	}

	return
}

// Stat - Returns statistics on the hash table as it was left by the last compute step
//   - includeDistribution set to true will include a slice with number of records per bucket
func (S *Session) Stat(includeDistribution bool) (tableStat TableStat, err error) {
	return S.hashTable.Stat(includeDistribution)
}

// RunID - Returns the identifier of the session used in logs
func (S *Session) RunID() string {
	return S.runID
}
