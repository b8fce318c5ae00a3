package document

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a block is appended with malformed content.
	ErrInvalidArgument = errors.New("document: invalid argument")

	// ErrInvalidState is returned when the builder is used after Build.
	ErrInvalidState = errors.New("document: invalid state")

	// ErrRender is matched by every *RenderError.
	ErrRender = errors.New("document: render failed")

	// ErrMissingDependency is matched by every *MissingDependencyError.
	ErrMissingDependency = errors.New("document: missing dependency")
)

// RenderError 描述后端在序列化某个块时的失败。Block 为 -1 表示与具体块无关（例如写文件失败）。
type RenderError struct {
	Backend string
	Block   int
	Err     error
}

func (e *RenderError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s: 渲染失败: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: 渲染第 %d 个块失败: %v", e.Backend, e.Block, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// NewRenderError wraps err with the backend name and offending block index.
// An error that already is a RenderError or MissingDependencyError is returned unchanged.
func NewRenderError(backend string, block int, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	var md *MissingDependencyError
	if errors.As(err, &md) {
		return err
	}
	return &RenderError{Backend: backend, Block: block, Err: err}
}

// MissingDependencyError 表示运行环境缺少后端所需的资源，Hint 给出可操作的补救说明。
type MissingDependencyError struct {
	Resource string
	Hint     string
	Err      error
}

func (e *MissingDependencyError) Error() string {
	msg := fmt.Sprintf("缺少依赖 %s", e.Resource)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }
