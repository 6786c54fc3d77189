package idgen

import (
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"
)

const (
	// 位数分配
	timestampBits = 41 // 时间戳位数
	hashBits      = 10 // hash值位数
	sequenceBits  = 12 // 序列号位数

	// 位移
	hashShift      = sequenceBits
	timestampShift = hashBits + sequenceBits

	// 掩码
	sequenceMask  = (1 << sequenceBits) - 1
	hashMask      = (1 << hashBits) - 1
	timestampMask = (1 << timestampBits) - 1

	// 基准时间 2024-01-01 00:00:00 UTC
	epochMillis = int64(1704067200000)
)

// Generator 雪花算法变种的提醒ID生成器
// 时间戳 | (任务,参与人,类型)哈希 | 序列号
type Generator struct {
	sequence int64 // 序列号计数器，原子访问
}

// NewGenerator 创建一个新的ID生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateID 根据提醒的业务键和计划投递时间生成ID
func (g *Generator) GenerateID(taskID, participantID int64, reminderType string, stime time.Time) int64 {
	var timestamp int64
	if stime.IsZero() {
		timestamp = time.Now().UnixMilli() - epochMillis
	} else {
		timestamp = stime.UnixMilli() - epochMillis
	}

	hashValue := bizHash(taskID, participantID, reminderType) % (1 << hashBits)

	// 原子递增序列号，在允许范围内循环
	sequence := (atomic.AddInt64(&g.sequence, 1) - 1) & sequenceMask

	return (timestamp&timestampMask)<<timestampShift |
		(hashValue&hashMask)<<hashShift |
		sequence
}

func bizHash(taskID, participantID int64, reminderType string) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%d:%s", taskID, participantID, reminderType)
	return int64(h.Sum64() & hashMask)
}

// ExtractTimestamp 从ID中提取时间戳
func ExtractTimestamp(id int64) time.Time {
	timestamp := (id >> timestampShift) & timestampMask
	return time.UnixMilli(timestamp + epochMillis)
}
