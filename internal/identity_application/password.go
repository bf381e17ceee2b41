package identity_application

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

//go:embed common_passwords.txt
var commonPasswordsFile string

// maxSimilarity - порог похожести пароля на имя пользователя
const maxSimilarity = 0.7

const maxUsernameLength = 150

var (
	commonPasswords = loadCommonPasswords(commonPasswordsFile)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	numericPattern  = regexp.MustCompile(`^[0-9]+$`)
	nameSeparators  = regexp.MustCompile(`[\W_]+`)
)

func loadCommonPasswords(data string) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		if line := strings.ToLower(strings.TrimSpace(scanner.Text())); line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}

func ValidateUsername(username string, errs locerr.FieldErrors) {
	switch {
	case username == "":
		errs.Add("username", "This field is required.")
	case utf8.RuneCountInString(username) > maxUsernameLength:
		errs.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernamePattern.MatchString(username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
}

// ValidatePassword проверяет длину, словарь частых паролей, пароль из одних цифр
// и похожесть на имя пользователя. Все нарушения пишутся в errs.
func ValidatePassword(password, username string, minLength int, errs locerr.FieldErrors) {
	if password == "" {
		errs.Add("password", "This field is required.")
		return
	}
	if utf8.RuneCountInString(password) < minLength {
		errs.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		errs.Add("password", "This password is too common.")
	}
	if numericPattern.MatchString(password) {
		errs.Add("password", "This password is entirely numeric.")
	}
	if username != "" && tooSimilar(password, username) {
		errs.Add("password", "The password is too similar to the username.")
	}
}

func tooSimilar(password, username string) bool {
	p := strings.ToLower(password)
	u := strings.ToLower(username)
	if p == u {
		return true
	}
	if similarity(p, u) >= maxSimilarity {
		return true
	}
	// части имени вроде "john.smith" сравниваем по отдельности
	for _, part := range nameSeparators.Split(u, -1) {
		if part != "" && part != u && similarity(p, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarity - отношение Ratcliff/Obershelp: 2*M/T, где M - число символов в
// совпадающих блоках, T - суммарная длина строк
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

func longestCommonBlock(a, b []rune) (int, int, int) {
	bestI, bestJ, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best, bestI, bestJ = cur[j], i-cur[j], j-cur[j]
				}
			}
		}
		prev = cur
	}
	return bestI, bestJ, best
}
