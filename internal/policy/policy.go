// Package policy решает, может ли роль выполнить действие над ресурсом пользователя.
// Проверка выполняется на границе HTTP, сервисы о ролях не знают.
package policy

import "github.com/yourusername/skillcert-api/internal/domain/entity"

// Action - действие над ресурсом
type Action string

// Действия API
const (
	ActionSubmitResult        Action = "submit_result"
	ActionUpdateResult        Action = "update_result"
	ActionViewResults         Action = "view_results"
	ActionTakeAssessment      Action = "take_assessment"
	ActionIssueCertification  Action = "issue_certification"
	ActionViewCertifications  Action = "view_certifications"
	ActionChangeCertStatus    Action = "change_certification_status"
	ActionVerifyCertification Action = "verify_certification"
)

// adminOnly - действия, доступные только администратору
var adminOnly = map[Action]bool{
	ActionUpdateResult:     true,
	ActionChangeCertStatus: true,
}

// ownerActions - что aprendiz может делать со своими данными
var ownerActions = map[Action]bool{
	ActionSubmitResult:       true,
	ActionViewResults:        true,
	ActionViewCertifications: true,
}

// Allow возвращает true, если роль может выполнить действие.
// isOwner - ресурс принадлежит самому вызывающему.
func Allow(role string, action Action, isOwner bool) bool {
	if action == ActionVerifyCertification {
		return true
	}

	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleEmpresa:
		return !adminOnly[action]
	case entity.RoleAprendiz:
		if action == ActionTakeAssessment {
			return true
		}
		return isOwner && ownerActions[action]
	}
	return false
}
