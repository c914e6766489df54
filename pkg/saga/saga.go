// Package saga 按固定顺序执行跨记录的写操作
//
// 存储层只保证单条记录的原子更新，没有跨记录事务。Saga把一次业务操作拆成有序步骤，
// 并用"提交点"（Pivot）划分三段：
//
//  1. 可补偿步骤：提交点之前，失败时按逆序执行已完成步骤的补偿，整个操作失败
//  2. 提交点：建立核心不变量的那一步（如条件更新图书状态），失败时同样整体失败
//  3. 尽力而为步骤：提交点之后，失败不影响操作结果，只记录失败并继续后续步骤，
//     由外部对账流程修复，不在请求内自动重试
package saga

import (
	"context"
	"errors"
	"fmt"
)

// Kind 步骤类型
type Kind int

const (
	KindCompensable Kind = iota // 提交点之前
	KindPivot                   // 提交点
	KindBestEffort              // 提交点之后
)

func (k Kind) String() string {
	switch k {
	case KindCompensable:
		return "compensable"
	case KindPivot:
		return "pivot"
	case KindBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// ErrInvalidStepOrder 尽力而为步骤出现在提交点之前，或提交点不止一个
var ErrInvalidStepOrder = errors.New("saga步骤顺序非法")

// Step 表示Saga中的一个步骤
type Step struct {
	Name       string
	Kind       Kind
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 只对可补偿步骤有意义
}

// StepFailure 一次步骤失败记录
type StepFailure struct {
	Step         string
	Kind         Kind
	Compensation bool // true表示补偿动作本身失败
	Err          error
}

// Result 执行结果
type Result struct {
	Committed bool          // 提交点是否已成功
	Failures  []StepFailure // 提交后失败的尽力而为步骤，以及失败的补偿
}

// Partial 提交成功但存在未完成的后续步骤
func (r *Result) Partial() bool {
	return r.Committed && len(r.Failures) > 0
}

// Saga 一次业务操作的步骤序列，不可复用
type Saga struct {
	name      string
	steps     []Step
	onFailure func(ctx context.Context, f StepFailure)
}

// New 创建Saga
//
// 示例：
//
//	s := saga.New("place_order").
//		AddStep("check_book", checkBook, nil).
//		AddPivot("mark_sold", markSold).
//		AddBestEffort("insert_order", insertOrder).
//		OnFailure(report)
//	res, err := s.Execute(ctx)
func New(name string) *Saga {
	return &Saga{name: name}
}

// Name Saga名称
func (s *Saga) Name() string {
	return s.name
}

// AddStep 添加可补偿步骤，compensate可以为nil（如只读校验）
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Kind: KindCompensable, Action: action, Compensate: compensate})
	return s
}

// AddPivot 添加提交点
func (s *Saga) AddPivot(name string, action func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Kind: KindPivot, Action: action})
	return s
}

// AddBestEffort 添加提交点之后的尽力而为步骤
func (s *Saga) AddBestEffort(name string, action func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Kind: KindBestEffort, Action: action})
	return s
}

// OnFailure 注册失败回调，每个尽力而为步骤失败或补偿失败时调用一次
func (s *Saga) OnFailure(fn func(ctx context.Context, f StepFailure)) *Saga {
	s.onFailure = fn
	return s
}

// Execute 顺序执行全部步骤
//
// 返回值：
// - 提交点之前（含提交点）失败：err为该步骤的错误（%w包装，可用errors.Is/As判断）
// - 提交成功：err为nil，Result.Failures列出失败的尽力而为步骤
//
// 没有提交点时，最后一个可补偿步骤成功即视为提交
func (s *Saga) Execute(ctx context.Context) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	var executed []Step

	for i, step := range s.steps {
		if res.Committed {
			if err := step.Action(ctx); err != nil {
				s.fail(ctx, res, StepFailure{Step: step.Name, Kind: step.Kind, Err: err})
			}
			continue
		}

		if err := step.Action(ctx); err != nil {
			s.compensate(ctx, res, executed)
			return res, fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
		}
		executed = append(executed, step)

		if step.Kind == KindPivot {
			res.Committed = true
		}
	}

	res.Committed = true
	return res, nil
}

// compensate 逆序执行已完成步骤的补偿，单个补偿失败不阻断其余补偿
func (s *Saga) compensate(ctx context.Context, res *Result, executed []Step) {
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.fail(ctx, res, StepFailure{Step: step.Name, Kind: step.Kind, Compensation: true, Err: err})
		}
	}
}

func (s *Saga) fail(ctx context.Context, res *Result, f StepFailure) {
	res.Failures = append(res.Failures, f)
	if s.onFailure != nil {
		s.onFailure(ctx, f)
	}
}

func (s *Saga) validate() error {
	pivots := 0
	for _, step := range s.steps {
		if step.Action == nil {
			return fmt.Errorf("%w: 步骤%s缺少Action", ErrInvalidStepOrder, step.Name)
		}
		switch step.Kind {
		case KindPivot:
			pivots++
		case KindBestEffort:
			if pivots == 0 {
				return fmt.Errorf("%w: 步骤%s位于提交点之前", ErrInvalidStepOrder, step.Name)
			}
		case KindCompensable:
			if pivots > 0 {
				return fmt.Errorf("%w: 可补偿步骤%s位于提交点之后", ErrInvalidStepOrder, step.Name)
			}
		}
	}
	if pivots > 1 {
		return fmt.Errorf("%w: 提交点只能有一个", ErrInvalidStepOrder)
	}
	return nil
}
