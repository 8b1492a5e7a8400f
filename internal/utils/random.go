package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// GenerateRandomStaffRole 生成的员工角色里经理是少数，店主不会由随机数据产生。
func GenerateRandomStaffRole() domain.Role {
	if rand.Intn(5) == 0 {
		return domain.RoleManager
	}
	return domain.RoleEmployee
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(businessID int64, password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		BusinessID:   businessID,
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomStaffRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var breakChoices = []int32{0, 0, 30, 30, 45, 60}

// GenerateRandomManualEntry 生成一条当天的随机手工时间记录（草稿状态），
// 开始时间落在早班到中班之间，时长 4 到 9 小时。
func GenerateRandomManualEntry(businessID, userID int64, workDate string) *domain.TimeEntry {
	startHour := rand.Intn(5) + 7 // 7~11 点开始
	duration := rand.Intn(6) + 4  // 4~9 小时
	endHour := startHour + duration
	if endHour > 23 {
		endHour = 23
	}

	return &domain.TimeEntry{
		BusinessID:   businessID,
		UserID:       userID,
		EntryType:    domain.EntryTypeManual,
		WorkDate:     workDate,
		StartTime:    fmt.Sprintf("%02d:00", startHour),
		EndTime:      fmt.Sprintf("%02d:00", endHour),
		BreakMinutes: breakChoices[rand.Intn(len(breakChoices))],
		Status:       domain.TimeEntryStatusDraft,
		CreatedBy:    userID,
		UpdatedBy:    userID,
	}
}

var shiftRoleTags = []string{"收银员", "导购", "理货员", "值班经理"}

func GenerateRandomShiftRoleTag() string {
	return shiftRoleTags[rand.Intn(len(shiftRoleTags))]
}
