package reporting

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
)

// Lookup は階層の読み込みに必要な社員検索の抽象です。
// FindByID は存在しない場合 employee.ErrEmployeeNotFound を返し、
// FindDirectReports は部下がいない場合に空スライスを返します。
type Lookup interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindDirectReports(ctx context.Context, managerID string) ([]*employee.Employee, error)
}

// Loader はルート社員から配下の部下ツリーを明示的に読み込みます。
// 各ノードの部下コレクションは 1 ノードにつき 1 回だけ取得します。
type Loader struct {
	lookup Lookup
}

// NewLoader は Loader を生成します。
func NewLoader(lookup Lookup) *Loader {
	return &Loader{lookup: lookup}
}

// FetchRoot はルート社員をスカラー項目のみで取得します。存在しない場合は found=false でエラーは返しません。
func (l *Loader) FetchRoot(ctx context.Context, id string) (*employee.Employee, bool, error) {
	root, err := l.lookup.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reporting: fetch employee %s: %w", id, err)
	}
	return root, true, nil
}

// Load はルート社員を取得し、到達可能なすべての部下コレクションを展開した状態で返します。
func (l *Loader) Load(ctx context.Context, id string) (*employee.Employee, bool, error) {
	root, found, err := l.FetchRoot(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	if _, err := l.Expand(ctx, root); err != nil {
		return nil, false, err
	}
	return root, true, nil
}

// Expand は root 配下をスタックで深さ優先に展開し、訪問したノード数を返します。
// 同じ社員へ 2 回到達した場合は階層が壊れているとみなし ErrHierarchyCycle を返します。
func (l *Loader) Expand(ctx context.Context, root *employee.Employee) (int, error) {
	if root == nil {
		return 0, nil
	}

	visited := map[string]struct{}{root.ID: {}}
	stack := []*employee.Employee{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := l.ExpandDirectReports(ctx, node); err != nil {
			return len(visited), err
		}

		for _, report := range node.DirectReports() {
			if _, seen := visited[report.ID]; seen {
				return len(visited), fmt.Errorf("reporting: employee %s reached twice: %w", report.ID, ErrHierarchyCycle)
			}
			visited[report.ID] = struct{}{}
			stack = append(stack, report)
		}
	}

	return len(visited), nil
}

// ExpandDirectReports は node の直属の部下を取得して設定します。読み込み済みであれば何もしません。
func (l *Loader) ExpandDirectReports(ctx context.Context, node *employee.Employee) error {
	if node == nil || node.DirectReportsLoaded() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reports, err := l.lookup.FindDirectReports(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("reporting: load direct reports of %s: %w", node.ID, err)
	}
	node.SetDirectReports(reports)
	return nil
}
