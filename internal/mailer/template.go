package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Subjects of the two notification emails.
const (
	SubjectPasswordRecovery = "🔐 Запрос на восстановление пароля - Tooler App"
	SubjectPasswordBackup   = "📋 Ссылка восстановления пароля - Tooler App"
)

const timestampLayout = "02.01.2006, 15:04:05"

// recoveryData feeds the password recovery template.
type recoveryData struct {
	UserName    string
	Email       string
	RequestedAt string
}

// backupData feeds the password backup template.
type backupData struct {
	UserName  string
	Email     string
	CreatedAt string
}

// RenderPasswordRecovery renders the password recovery notification body. All
// interpolated values are HTML-escaped by the template engine.
func RenderPasswordRecovery(email, userName string, requestedAt time.Time) (string, error) {
	var out strings.Builder
	err := recoveryTemplate.Execute(&out, recoveryData{
		UserName:    userName,
		Email:       email,
		RequestedAt: requestedAt.UTC().Format(timestampLayout),
	})
	if err != nil {
		return "", fmt.Errorf("render recovery email: %w", err)
	}
	return out.String(), nil
}

// RenderPasswordBackup renders the password backup notification body.
func RenderPasswordBackup(email, userName string, createdAt *time.Time) (string, error) {
	created := "В ходе сеанса"
	if createdAt != nil {
		created = createdAt.UTC().Format(timestampLayout)
	}

	var out strings.Builder
	err := backupTemplate.Execute(&out, backupData{
		UserName:  userName,
		Email:     email,
		CreatedAt: created,
	})
	if err != nil {
		return "", fmt.Errorf("render backup email: %w", err)
	}
	return out.String(), nil
}

var recoveryTemplate = template.Must(template.New("password-recovery").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #0E639C 0%, #1e7bc7 100%); color: white; padding: 30px; border-radius: 8px 8px 0 0; text-align: center; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; }
    .button { display: inline-block; background: #0E639C; color: white; padding: 12px 30px; border-radius: 5px; text-decoration: none; margin: 20px 0; font-weight: bold; }
    .info-box { background: #e3f2fd; border-left: 4px solid #0E639C; padding: 15px; margin: 15px 0; border-radius: 4px; }
    .footer { text-align: center; font-size: 12px; color: #888; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; }
    .warning { color: #d32f2f; font-weight: bold; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>🔐 Восстановление пароля</h1>
      <p>Tooler App</p>
    </div>
    <div class="content">
      <h2>Привет{{if .UserName}}, {{.UserName}}{{end}}!</h2>

      <p>Мы получили запрос на восстановление пароля для вашего аккаунта.</p>

      <div class="info-box">
        <p><strong>📧 Email:</strong> {{.Email}}</p>
        <p><strong>⏰ Время запроса:</strong> {{.RequestedAt}}</p>
      </div>

      <h3>Что делать дальше:</h3>
      <ol>
        <li>Откройте приложение Tooler</li>
        <li>На экране входа нажмите "Забыли пароль?"</li>
        <li>Введите ваш email: <strong>{{.Email}}</strong></li>
        <li>Следуйте инструкциям в письме восстановления пароля</li>
        <li>Создайте новый безопасный пароль</li>
      </ol>

      <div class="info-box">
        <p class="warning">⚠️ Важно:</p>
        <p>Если <strong>вы</strong> не запрашивали восстановление пароля, немедленно смените пароль или свяжитесь с администратором!</p>
      </div>

      <h3>Рекомендации по безопасности:</h3>
      <ul>
        <li>✓ Используйте пароль не менее 8 символов</li>
        <li>✓ Включите заглавные буквы, цифры и специальные символы</li>
        <li>✓ Не используйте личную информацию в пароле</li>
        <li>✓ Храните пароль в безопасном месте</li>
      </ul>

      <p style="margin-top: 30px; font-size: 14px; color: #888;">
        Это автоматическое письмо. Пожалуйста, не отвечайте на него.
      </p>
    </div>
    <div class="footer">
      <p>© 2026 Tooler App. Все права защищены.</p>
      <p>Если у вас есть вопросы, обратитесь в службу поддержки.</p>
    </div>
  </div>
</body>
</html>
`))

var backupTemplate = template.Must(template.New("password-backup").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #06B6D4 0%, #0891B2 100%); color: white; padding: 30px; border-radius: 8px 8px 0 0; text-align: center; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px; }
    .info-box { background: #cffafe; border-left: 4px solid #06B6D4; padding: 15px; margin: 15px 0; border-radius: 4px; }
    .footer { text-align: center; font-size: 12px; color: #888; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; }
    .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 15px 0; border-radius: 4px; color: #856404; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>📋 Ссылка восстановления пароля</h1>
      <p>Tooler App</p>
    </div>
    <div class="content">
      <h2>Привет{{if .UserName}}, {{.UserName}}{{end}}!</h2>

      <p>Вы запросили отправку ссылки восстановления пароля на этот адрес электронной почты.</p>

      <div class="info-box">
        <p><strong>📧 Email:</strong> {{.Email}}</p>
        <p><strong>⏰ Дата создания:</strong> {{.CreatedAt}}</p>
      </div>

      <h3>Инструкции по восстановлению:</h3>
      <ol>
        <li>Откройте приложение Tooler на вашем устройстве</li>
        <li>На экране входа выберите "Забыли пароль?"</li>
        <li>Введите ваш email адрес: <strong>{{.Email}}</strong></li>
        <li>Проверьте на этом адресе письмо восстановления</li>
        <li>Кликните ссылку в письме и создайте новый пароль</li>
      </ol>

      <div class="warning">
        <strong>🔒 Помните о безопасности:</strong>
        <ul>
          <li>Никогда не делитесь этим письмом с другими</li>
          <li>Используйте уникальный сильный пароль</li>
          <li>Не сохраняйте пароль в открытом виде</li>
          <li>Если вы не запрашивали это письмо - пожалуйста, смените пароль немедленно</li>
        </ul>
      </div>

      <p style="margin-top: 30px; font-size: 14px; color: #888;">
        Это автоматическое письмо. Пожалуйста, не отвечайте на него.
      </p>
    </div>
    <div class="footer">
      <p>© 2026 Tooler App. Все права защищены.</p>
      <p>Если у вас есть вопросы, обратитесь в службу поддержки.</p>
    </div>
  </div>
</body>
</html>
`))
