package formatter

import (
	"strings"
	"testing"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormat_Delegation(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC)
	task := domain.Task{
		ID:          1,
		Title:       "Revisar contrato",
		Description: "Verificar cláusulas de rescisão",
		Priority:    domain.PriorityHigh,
		Status:      domain.TaskStatusInProgress,
		Deadline:    &deadline,
		ProjectName: "Jurídico",
	}

	got := Format(task, domain.ReminderTypeDelegation, "Maria")

	expected := "🔔 *Nova tarefa atribuída a você!*\n\n" +
		"📋 *Revisar contrato*\n" +
		"📁 Projeto: Jurídico\n" +
		"🔴 Prioridade: ALTA\n" +
		"📅 Prazo: 15/03/2025\n" +
		"👤 Atribuída por: Maria\n" +
		"\n📝 Verificar cláusulas de rescisão\n" +
		"\nAcesse o painel para ver os detalhes da tarefa."
	assert.Equal(t, expected, got)
}

func TestFormat_MinimalTask(t *testing.T) {
	t.Parallel()

	// 可选字段全空时对应的行不出现
	task := domain.Task{
		ID:       2,
		Title:    "Tarefa simples",
		Priority: domain.PriorityLow,
		Status:   domain.TaskStatusBacklog,
	}

	got := Format(task, domain.ReminderTypeWorkStart, "")

	expected := "🌅 *Lembrete: começo do expediente*\n\n" +
		"📋 *Tarefa simples*\n" +
		"🟢 Prioridade: BAIXA\n" +
		"\nAcesse o painel para ver os detalhes da tarefa."
	assert.Equal(t, expected, got)
}

func TestFormat_Headers(t *testing.T) {
	t.Parallel()

	task := domain.Task{ID: 3, Title: "t", Priority: domain.PriorityMedium, Status: domain.TaskStatusInProgress}

	testCases := []struct {
		reminderType domain.ReminderType
		header       string
	}{
		{domain.ReminderTypeWorkMid, "⏰ *Lembrete: meio do expediente*"},
		{domain.ReminderTypeWorkEnd, "🌇 *Lembrete: fim do expediente*"},
		{domain.ReminderTypeInProgressPing, "▶️ *Tarefa em andamento*"},
		{domain.ReminderTypeInReviewPing, "🔍 *Tarefa em revisão*"},
		{domain.ReminderTypeCompletedPing, "✅ *Tarefa concluída*"},
	}

	for idx := range testCases {
		tc := testCases[idx]
		t.Run(tc.reminderType.String(), func(t *testing.T) {
			t.Parallel()
			got := Format(task, tc.reminderType, "")
			assert.True(t, strings.HasPrefix(got, tc.header), got)
		})
	}
}

func TestFormat_UnknownTypeFallsBackToDelegation(t *testing.T) {
	t.Parallel()

	task := domain.Task{ID: 4, Title: "t", Priority: domain.PriorityLow, Status: domain.TaskStatusBacklog}
	got := Format(task, domain.ReminderType("UNKNOWN"), "")
	assert.True(t, strings.HasPrefix(got, "🔔 *Nova tarefa atribuída a você!*"))
}
