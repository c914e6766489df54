package saga

import (
	"context"
	"errors"
	"testing"
)

func record(executed *[]string, name string, err error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		*executed = append(*executed, name)
		return err
	}
}

// TestSaga_Execute_Success 所有步骤成功
func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	res, err := New("place_order").
		AddStep("校验图书", record(&executed, "校验图书", nil), nil).
		AddPivot("标记售出", record(&executed, "标记售出", nil)).
		AddBestEffort("创建订单", record(&executed, "创建订单", nil)).
		AddBestEffort("记录购买", record(&executed, "记录购买", nil)).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("Saga执行失败: %v", err)
	}

	if !res.Committed || res.Partial() {
		t.Errorf("期望已提交且无失败步骤, got committed=%v failures=%v", res.Committed, res.Failures)
	}
	want := []string{"校验图书", "标记售出", "创建订单", "记录购买"}
	if len(executed) != len(want) {
		t.Fatalf("执行步骤数错误: %v", executed)
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Errorf("执行顺序错误: %v", executed)
		}
	}
}

// TestSaga_Execute_PivotFailure 提交点失败：不执行后续步骤，错误原样可判断
func TestSaga_Execute_PivotFailure(t *testing.T) {
	executed := make([]string, 0)
	errSold := errors.New("图书已售出")

	res, err := New("place_order").
		AddStep("校验图书", record(&executed, "校验图书", nil), record(&executed, "补偿校验", nil)).
		AddPivot("标记售出", record(&executed, "标记售出", errSold)).
		AddBestEffort("创建订单", record(&executed, "创建订单", nil)).
		Execute(context.Background())

	if !errors.Is(err, errSold) {
		t.Fatalf("期望返回提交点错误, got %v", err)
	}
	if res.Committed {
		t.Error("提交点失败时不应标记为已提交")
	}
	// 补偿只针对已完成的步骤，提交点本身失败不补偿
	want := []string{"校验图书", "标记售出", "补偿校验"}
	if len(executed) != len(want) {
		t.Fatalf("执行步骤错误: %v", executed)
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Errorf("执行顺序错误: %v", executed)
		}
	}
}

// TestSaga_Execute_BestEffortFailure 提交后的步骤失败不影响结果，后续步骤继续执行
func TestSaga_Execute_BestEffortFailure(t *testing.T) {
	executed := make([]string, 0)
	reported := make([]StepFailure, 0)
	errDB := errors.New("数据库连接断开")

	res, err := New("place_order").
		AddPivot("标记售出", record(&executed, "标记售出", nil)).
		AddBestEffort("创建订单", record(&executed, "创建订单", errDB)).
		AddBestEffort("记录购买", record(&executed, "记录购买", nil)).
		OnFailure(func(ctx context.Context, f StepFailure) {
			reported = append(reported, f)
		}).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("提交后失败不应返回错误: %v", err)
	}

	if !res.Partial() {
		t.Error("期望Partial()为true")
	}
	if len(executed) != 3 {
		t.Errorf("失败后应继续执行后续步骤: %v", executed)
	}
	if len(reported) != 1 || reported[0].Step != "创建订单" || !errors.Is(reported[0].Err, errDB) {
		t.Errorf("失败回调记录错误: %+v", reported)
	}
	if reported[0].Kind != KindBestEffort {
		t.Errorf("期望步骤类型为best_effort, got %s", reported[0].Kind)
	}
}

// TestSaga_Execute_CompensationFailure 补偿失败会被记录，其余补偿继续执行
func TestSaga_Execute_CompensationFailure(t *testing.T) {
	executed := make([]string, 0)

	res, err := New("reserve").
		AddStep("步骤A", record(&executed, "A", nil), record(&executed, "补偿A", nil)).
		AddStep("步骤B", record(&executed, "B", nil), record(&executed, "补偿B", errors.New("补偿失败"))).
		AddPivot("提交", record(&executed, "提交", errors.New("冲突"))).
		Execute(context.Background())

	if err == nil {
		t.Fatal("期望返回错误")
	}
	if len(res.Failures) != 1 || !res.Failures[0].Compensation {
		t.Errorf("期望记录一次补偿失败: %+v", res.Failures)
	}
	last := executed[len(executed)-1]
	if last != "补偿A" {
		t.Errorf("补偿A应在补偿B失败后继续执行: %v", executed)
	}
}

// TestSaga_Execute_InvalidOrder 非法步骤顺序
func TestSaga_Execute_InvalidOrder(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	cases := map[string]*Saga{
		"尽力而为步骤在提交点之前": New("x").AddBestEffort("a", noop).AddPivot("b", noop),
		"两个提交点":        New("x").AddPivot("a", noop).AddPivot("b", noop),
		"可补偿步骤在提交点之后":  New("x").AddPivot("a", noop).AddStep("b", noop, nil),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Execute(context.Background()); !errors.Is(err, ErrInvalidStepOrder) {
				t.Errorf("期望ErrInvalidStepOrder, got %v", err)
			}
		})
	}
}

// TestSaga_Execute_NoPivot 没有提交点时全部成功即提交
func TestSaga_Execute_NoPivot(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }
	res, err := New("read_only").AddStep("a", noop, nil).Execute(context.Background())
	if err != nil || !res.Committed {
		t.Errorf("期望提交成功, got err=%v committed=%v", err, res.Committed)
	}
}
