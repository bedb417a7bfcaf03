package service

import (
	"testing"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
)

// legalKey 穷举用键
type legalKey struct {
	role   model.Role
	status model.Status
	action model.Action
}

// collectLegal 遍历全空间收集所有合法组合
func collectLegal() map[legalKey]decision {
	legal := make(map[legalKey]decision)
	statuses := append([]model.Status{model.StatusNone}, model.AllStatuses...)
	for _, role := range model.AllRoles {
		for _, status := range statuses {
			for _, action := range model.AllActions {
				if dec, ok := decide(role, status, action); ok {
					legal[legalKey{role, status, action}] = dec
				}
			}
		}
	}
	return legal
}

func TestDecide_BasicRoleHasNoTransitions(t *testing.T) {
	for key := range collectLegal() {
		if key.role == model.RoleBasic {
			t.Errorf("basic 角色不应有任何合法转换: status=%s action=%s", key.status, key.action)
		}
	}
}

func TestDecide_ManagerTransitions(t *testing.T) {
	cases := []struct {
		status model.Status
		action model.Action
		wantTo model.Status
	}{
		{model.StatusNone, model.ActionTemp, model.StatusPending},
		{model.StatusNone, model.ActionRequest, model.StatusApprovalRequested},
		{model.StatusPending, model.ActionRequest, model.StatusApprovalRequested},
		{model.StatusPending, model.ActionDeleteRequest, model.StatusDeletionRequested},
		{model.StatusApprovalRequested, model.ActionModifyRequest, model.StatusModificationRequested},
		{model.StatusApproved, model.ActionModifyRequest, model.StatusModificationRequested},
		{model.StatusConfirmed, model.ActionModifyRequest, model.StatusModificationRequested},
		{model.StatusApproved, model.ActionCancelRequest, model.StatusCancellationRequested},
		{model.StatusConfirmed, model.ActionCancelRequest, model.StatusCancellationRequested},
	}
	for _, c := range cases {
		dec, ok := decide(model.RoleManager, c.status, c.action)
		if !ok {
			t.Errorf("manager (%s, %s) 应为合法转换", c.status, c.action)
			continue
		}
		if dec.to != c.wantTo {
			t.Errorf("manager (%s, %s) 期望目标=%s，实际=%s", c.status, c.action, c.wantTo, dec.to)
		}
	}
}

func TestDecide_ManagerCannotApprove(t *testing.T) {
	adminOnly := []model.Action{
		model.ActionApprove, model.ActionConfirm, model.ActionCancel, model.ActionDelete,
		model.ActionModifyApprove, model.ActionModifyReject,
		model.ActionCancelApprove, model.ActionDeleteApprove,
	}
	statuses := append([]model.Status{model.StatusNone}, model.AllStatuses...)
	for _, action := range adminOnly {
		for _, status := range statuses {
			if _, ok := decide(model.RoleManager, status, action); ok {
				t.Errorf("manager 不应可执行审批类动作: status=%s action=%s", status, action)
			}
		}
	}
}

func TestDecide_AdminTransitions(t *testing.T) {
	cases := []struct {
		status model.Status
		action model.Action
		wantTo model.Status
	}{
		{model.StatusNone, model.ActionApprove, model.StatusApproved},
		{model.StatusPending, model.ActionApprove, model.StatusApproved},
		{model.StatusApprovalRequested, model.ActionApprove, model.StatusApproved},
		{model.StatusApproved, model.ActionConfirm, model.StatusConfirmed},
		{model.StatusModificationRequested, model.ActionModifyApprove, model.StatusModificationApproved},
		{model.StatusCancellationRequested, model.ActionCancelApprove, model.StatusCancelled},
	}
	for _, c := range cases {
		dec, ok := decide(model.RoleAdmin, c.status, c.action)
		if !ok {
			t.Errorf("admin (%s, %s) 应为合法转换", c.status, c.action)
			continue
		}
		if dec.to != c.wantTo {
			t.Errorf("admin (%s, %s) 期望目标=%s，实际=%s", c.status, c.action, c.wantTo, dec.to)
		}
	}
}

func TestDecide_AdminCancelFromAnyExceptCancelled(t *testing.T) {
	for _, status := range model.AllStatuses {
		dec, ok := decide(model.RoleAdmin, status, model.ActionCancel)
		if status == model.StatusCancelled {
			if ok {
				t.Error("cancelled 状态不应可再次 cancel")
			}
			continue
		}
		if !ok {
			t.Errorf("admin 应可从 %s 执行 cancel", status)
			continue
		}
		if dec.to != model.StatusCancelled {
			t.Errorf("cancel 目标应为 cancelled，实际=%s", dec.to)
		}
	}
}

func TestDecide_AdminDeleteDeactivates(t *testing.T) {
	for _, status := range model.AllStatuses {
		dec, ok := decide(model.RoleAdmin, status, model.ActionDelete)
		if !ok {
			t.Errorf("admin 应可从 %s 执行 delete", status)
			continue
		}
		if dec.to != model.StatusDeleted || !dec.deactivate {
			t.Errorf("delete 应转到 deleted 并停用记录: to=%s deactivate=%v", dec.to, dec.deactivate)
		}
	}

	dec, ok := decide(model.RoleAdmin, model.StatusDeletionRequested, model.ActionDeleteApprove)
	if !ok || dec.to != model.StatusDeleted || !dec.deactivate {
		t.Errorf("delete_approve 应转到 deleted 并停用记录: ok=%v to=%s deactivate=%v", ok, dec.to, dec.deactivate)
	}
}

func TestDecide_ModifyRejectReverts(t *testing.T) {
	dec, ok := decide(model.RoleAdmin, model.StatusModificationRequested, model.ActionModifyReject)
	if !ok {
		t.Fatal("modify_reject 应为合法转换")
	}
	if !dec.revert {
		t.Error("modify_reject 应标记 revert（恢复申请前状态）")
	}
}

func TestDecide_RequestStatesOnlyAcceptResolutions(t *testing.T) {
	// modification_requested 下 manager 不可再发起任何申请
	for _, action := range model.AllActions {
		if _, ok := decide(model.RoleManager, model.StatusModificationRequested, action); ok {
			t.Errorf("modification_requested 下 manager 不应可执行 %s", action)
		}
	}
}

func TestDecide_UnknownCombinationsRejected(t *testing.T) {
	cases := []struct {
		role   model.Role
		status model.Status
		action model.Action
	}{
		{model.RoleManager, model.StatusCancelled, model.ActionModifyRequest}, // 终态
		{model.RoleManager, model.StatusDeleted, model.ActionRequest},
		{model.RoleAdmin, model.StatusPending, model.ActionConfirm}, // 必须先 approve
		{model.RoleAdmin, model.StatusApproved, model.ActionModifyApprove},
		{model.RoleBasic, model.StatusPending, model.ActionTemp},
	}
	for _, c := range cases {
		if _, ok := decide(c.role, c.status, c.action); ok {
			t.Errorf("(%s, %s, %s) 不应为合法转换", c.role, c.status, c.action)
		}
	}
}

// 防回归：合法组合总数固定，规则表意外扩张或收缩时报警
func TestDecide_LegalTransitionCount(t *testing.T) {
	legal := collectLegal()

	// manager: temp(1) + request(2) + delete_request(1) + modify_request(3) + cancel_request(2) = 9
	// admin: temp(12) + approve(3) + confirm(1) + cancel(10) + delete(11)
	//        + modify_approve(1) + modify_reject(1) + cancel_approve(1) + delete_approve(1) = 41
	const want = 50
	if len(legal) != want {
		t.Errorf("合法转换总数期望 %d，实际=%d", want, len(legal))
	}
}
