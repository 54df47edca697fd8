package reporting

import (
	"context"

	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
)

// Expander は未読み込みの部下コレクションを必要に応じて展開します。
type Expander interface {
	ExpandDirectReports(ctx context.Context, node *employee.Employee) error
}

// CountReports は root 配下の直接・間接の部下の総数を返します。root 自身は含みません。
//
// 再帰ではなく明示的なスタックで走査するため、組織の深さに関わらずコールスタックを消費しません。
// 部下コレクションが未読み込みのノードは expander で展開します。expander が nil の場合、
// 未読み込みのノードは部下なしとして扱います。
func CountReports(ctx context.Context, root *employee.Employee, expander Expander) (int, error) {
	if root == nil {
		return 0, nil
	}

	count := 0
	stack := []*employee.Employee{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !node.DirectReportsLoaded() && expander != nil {
			if err := expander.ExpandDirectReports(ctx, node); err != nil {
				return 0, err
			}
		}

		for _, report := range node.DirectReports() {
			count++
			stack = append(stack, report)
		}
	}

	return count, nil
}
