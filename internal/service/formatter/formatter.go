package formatter

import (
	"strings"

	"gitee.com/flycash/task-reminder/internal/domain"
)

// 纯函数：任务快照 + 提醒类型 + 指派人 -> 消息正文
// 不做任何IO，方便按字面值断言

var headers = map[domain.ReminderType]string{
	domain.ReminderTypeDelegation:     "🔔 *Nova tarefa atribuída a você!*",
	domain.ReminderTypeWorkStart:      "🌅 *Lembrete: começo do expediente*",
	domain.ReminderTypeWorkMid:        "⏰ *Lembrete: meio do expediente*",
	domain.ReminderTypeWorkEnd:        "🌇 *Lembrete: fim do expediente*",
	domain.ReminderTypeInProgressPing: "▶️ *Tarefa em andamento*",
	domain.ReminderTypeInReviewPing:   "🔍 *Tarefa em revisão*",
	domain.ReminderTypeCompletedPing:  "✅ *Tarefa concluída*",
}

var priorityLabels = map[domain.Priority]string{
	domain.PriorityHigh:   "🔴 Prioridade: ALTA",
	domain.PriorityMedium: "🟡 Prioridade: MÉDIA",
	domain.PriorityLow:    "🟢 Prioridade: BAIXA",
}

// Format 生成本地化的提醒消息正文
func Format(task domain.Task, reminderType domain.ReminderType, assignorName string) string {
	var b strings.Builder

	header, ok := headers[reminderType]
	if !ok {
		header = headers[domain.ReminderTypeDelegation]
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString("📋 *")
	b.WriteString(task.Title)
	b.WriteString("*\n")

	if task.ProjectName != "" {
		b.WriteString("📁 Projeto: ")
		b.WriteString(task.ProjectName)
		b.WriteString("\n")
	}

	if label, ok := priorityLabels[task.Priority]; ok {
		b.WriteString(label)
		b.WriteString("\n")
	}

	if task.Deadline != nil {
		b.WriteString("📅 Prazo: ")
		b.WriteString(task.Deadline.Format("02/01/2006"))
		b.WriteString("\n")
	}

	if assignorName != "" {
		b.WriteString("👤 Atribuída por: ")
		b.WriteString(assignorName)
		b.WriteString("\n")
	}

	if task.Description != "" {
		b.WriteString("\n📝 ")
		b.WriteString(task.Description)
		b.WriteString("\n")
	}

	b.WriteString("\nAcesse o painel para ver os detalhes da tarefa.")
	return b.String()
}
