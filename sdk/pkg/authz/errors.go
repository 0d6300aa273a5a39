package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable 无法获得底层存储连接（连接丢失、超时）。
	// 调用方可以重试，这里不做自动重试。
	ErrStoreUnavailable = errors.New("policy store unavailable")

	// ErrInconsistentState 持久化失败且内存回滚也失败后，内存与存储出现分歧。
	// 通过全量 LoadPolicy 重新加载恢复。
	ErrInconsistentState = errors.New("in-memory policy state diverged from store")
)

// AdapterError 统一包装存储层错误，调用方不会看到具体存储引擎的错误类型。
type AdapterError struct {
	Op  string // 失败的存储操作，如 "AddPolicy"
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("policy store %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError wraps a storage-layer failure. A nil cause returns nil.
func NewAdapterError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Op: op, Err: err}
}
