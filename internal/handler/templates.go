package handler

import "html/template"

// primaryColor is the accent color carried over from the legacy pages.
const primaryColor = "#2A314D"

var contactTmpl = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html lang="az">
<head>
<meta charset="utf-8">
<title>Əlaqə</title>
<style>
  body { font-family: sans-serif; max-width: 480px; margin: 2rem auto; color: {{.Primary}}; }
  label { display: block; margin-top: 1rem; }
  input, textarea { width: 100%; padding: .5rem; }
  .hp { display: none; }
  button { margin-top: 1rem; padding: .5rem 2rem; background: {{.Primary}}; color: #fff; border: 0; }
  .alert.success { color: green; }
  .alert.error { color: crimson; }
</style>
</head>
<body>
<h1>Bizimlə əlaqə</h1>
<div id="alert" class="alert"></div>
<form id="contact-form">
  <label>Ad və Soyad <input id="name" name="name" required></label>
  <label>Email <input id="email" name="email" type="email" required></label>
  <label>Mesaj <textarea id="message" name="message" rows="6" required></textarea></label>
  <div class="hp"><input id="hp" name="hp" tabindex="-1" autocomplete="off"></div>
  <button id="submitBtn" type="submit">Göndər</button>
</form>
<script>
const form = document.getElementById('contact-form');
const alertBox = document.getElementById('alert');
const submitBtn = document.getElementById('submitBtn');

function showAlert(type, message) {
  alertBox.className = 'alert ' + (type === 'success' ? 'success' : 'error');
  alertBox.textContent = message;
}

form.addEventListener('submit', async (e) => {
  e.preventDefault();
  const name = document.getElementById('name').value.trim();
  const email = document.getElementById('email').value.trim();
  const message = document.getElementById('message').value.trim();
  const hp = document.getElementById('hp').value.trim();

  submitBtn.disabled = true;
  submitBtn.textContent = 'Göndərilir...';

  try {
    const res = await fetch('/api/contact', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ name, email, message, hp }),
    });
    const data = await res.json();

    if (!res.ok) {
      showAlert('error', data.error || 'Xəta baş verdi.');
    } else {
      showAlert('success', 'Mesaj qəbul olundu!');
      form.reset();
    }
  } catch (err) {
    showAlert('error', 'Şəbəkə xətası.');
  } finally {
    submitBtn.disabled = false;
    submitBtn.textContent = 'Göndər';
  }
});
</script>
</body>
</html>
`))

var adminTmpl = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="az">
<head>
<meta charset="utf-8">
<title>Mesajlar</title>
<style>
  body { font-family: sans-serif; margin: 2rem; color: {{.Primary}}; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #ccc; padding: .5rem; text-align: left; vertical-align: top; }
  th { background: {{.Primary}}; color: #fff; }
</style>
</head>
<body>
<h1>Gələn mesajlar ({{len .Messages}})</h1>
<table>
  <tr><th>Ad və Soyad</th><th>Email</th><th>Mesaj</th><th>IP</th><th>Tarix</th></tr>
  {{range .Messages}}
  <tr>
    <td>{{.Name}}</td>
    <td>{{.Email}}</td>
    <td>{{.Message}}</td>
    <td>{{.IP}}</td>
    <td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
  </tr>
  {{end}}
</table>
</body>
</html>
`))
