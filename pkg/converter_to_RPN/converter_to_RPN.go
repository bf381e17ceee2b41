package converter_to_RPN

import (
	"math"
	"strconv"
	"strings"

	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
)

// Функция для проверки правильности расставления скобок
func IsValidParentheses(expression string) bool {
	stack := []rune{}
	for _, char := range expression {
		switch char {
		case '(':
			stack = append(stack, char)
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// Функция для преобразования выражения в обратную польскую нотацию.
// Минус в начале выражения, после оператора или после '(' считается знаком числа.
func InfixToRPN(expression string) ([]string, error) {
	rpn := []string{}
	operatorStack := []string{}
	numberBuffer := strings.Builder{}
	// expectOperand == true, когда следующим должен идти операнд
	expectOperand := true

	flush := func() error {
		if numberBuffer.Len() == 0 {
			return nil
		}
		if !expectOperand {
			return locerr.ErrIncorrectExpression
		}
		rpn = append(rpn, numberBuffer.String())
		numberBuffer.Reset()
		expectOperand = false
		return nil
	}

	for _, char := range expression {
		switch {
		case IsDigit(char) || char == '.':
			numberBuffer.WriteRune(char)
		case char == '-' && expectOperand && numberBuffer.Len() == 0:
			numberBuffer.WriteRune(char)
		case char == '+' || char == '-' || char == '*' || char == '/':
			if err := flush(); err != nil {
				return nil, err
			}
			if expectOperand {
				return nil, locerr.ErrIncorrectExpression
			}
			for len(operatorStack) > 0 && GetPrecedence(string(char)) <= GetPrecedence(operatorStack[len(operatorStack)-1]) {
				rpn = append(rpn, operatorStack[len(operatorStack)-1])
				operatorStack = operatorStack[:len(operatorStack)-1]
			}
			operatorStack = append(operatorStack, string(char))
			expectOperand = true
		case char == '(':
			// операнды только числа, поэтому "-(" и "2(" не поддерживаем
			if numberBuffer.Len() > 0 || !expectOperand {
				return nil, locerr.ErrIncorrectExpression
			}
			operatorStack = append(operatorStack, string(char))
		case char == ')':
			if err := flush(); err != nil {
				return nil, err
			}
			for len(operatorStack) > 0 && operatorStack[len(operatorStack)-1] != "(" {
				rpn = append(rpn, operatorStack[len(operatorStack)-1])
				operatorStack = operatorStack[:len(operatorStack)-1]
			}
			if len(operatorStack) == 0 {
				return nil, locerr.ErrBracketMismatch
			}
			operatorStack = operatorStack[:len(operatorStack)-1]
		case char == ' ' || char == '\t':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			return nil, locerr.ErrInvalidCharacter
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	for len(operatorStack) > 0 {
		top := operatorStack[len(operatorStack)-1]
		if top == "(" {
			return nil, locerr.ErrBracketMismatch
		}
		rpn = append(rpn, top)
		operatorStack = operatorStack[:len(operatorStack)-1]
	}

	return rpn, nil
}

// ParseBinary разбирает выражение из ровно одной операции над двумя числами, например "12.5 / -4".
// Выражение не вычисляется: сервер сам применяет оператор к операндам.
func ParseBinary(expression string) (operand1, operand2 float64, operator string, err error) {
	if strings.TrimSpace(expression) == "" {
		return 0, 0, "", locerr.ErrEmptyExpression
	}
	if !IsValidParentheses(expression) {
		return 0, 0, "", locerr.ErrBracketMismatch
	}

	rpn, err := InfixToRPN(expression)
	if err != nil {
		return 0, 0, "", err
	}
	if len(rpn) != 3 || GetPrecedence(rpn[2]) == 0 {
		return 0, 0, "", locerr.ErrIncorrectExpression
	}

	operand1, err = parseNumber(rpn[0])
	if err != nil {
		return 0, 0, "", err
	}
	operand2, err = parseNumber(rpn[1])
	if err != nil {
		return 0, 0, "", err
	}
	return operand1, operand2, rpn[2], nil
}

func parseNumber(token string) (float64, error) {
	n, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, locerr.ErrInvalidNumber
	}
	return n, nil
}

func IsDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

func GetPrecedence(operator string) int {
	switch operator {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	default:
		return 0
	}
}
