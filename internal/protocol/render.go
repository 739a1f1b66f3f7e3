package protocol

import (
	"bytes"
	"html/template"
)

var documentTmpl = template.Must(template.New("protocol").Parse(documentHTML))

// Render turns a protocol into a printable, self-contained HTML page.
func Render(p *Protocol) (string, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Write-off protocol {{.DocumentNumber}}</title>
<style>
  @page { size: A4; margin: 20mm 15mm; }
  body { font-family: "Times New Roman", serif; font-size: 12pt; color: #000; margin: 0; }
  .org { font-size: 11pt; }
  .approval { width: 45%; margin-left: auto; margin-top: 8mm; }
  .approval p { margin: 2mm 0; }
  h1 { text-align: center; font-size: 14pt; margin: 10mm 0 2mm; text-transform: uppercase; }
  .meta { text-align: center; margin-bottom: 6mm; }
  table.items { width: 100%; border-collapse: collapse; margin: 4mm 0; }
  table.items th, table.items td { border: 1px solid #000; padding: 1.5mm 2mm; font-size: 10.5pt; }
  table.items th { background: #f0f0f0; }
  td.num { text-align: right; white-space: nowrap; }
  tr.total td { font-weight: bold; }
  .signatures { margin-top: 10mm; }
  .sig { display: flex; justify-content: space-between; align-items: flex-end; margin: 6mm 0; }
  .sig .role { width: 35%; }
  .sig .line { width: 30%; border-bottom: 1px solid #000; height: 6mm; }
  .sig .name { width: 30%; text-align: right; }
  .muted { color: #555; font-size: 10pt; }
</style>
</head>
<body>
<div class="org">
  <strong>{{.Organization.Name}}</strong>{{if .Organization.Code}}<br>Code: {{.Organization.Code}}{{end}}{{if .Organization.Address}}<br>{{.Organization.Address}}{{end}}
</div>

<div class="approval">
  <p><strong>APPROVED</strong></p>
  {{with .HeadOfEnterprise}}<p>{{.Position}}</p>
  <p>________________ {{.FullName}}</p>{{else}}<p>Head of enterprise</p>
  <p>________________</p>{{end}}
  <p>{{.Date}}</p>
</div>

<h1>Write-off protocol</h1>
<div class="meta">No. {{.DocumentNumber}} of {{.Date}}</div>

<p>The commission composed of:</p>
<ul>
  {{with .Chair}}<li>Chair: {{.FullName}}{{if .Position}}, {{.Position}}{{end}}</li>{{end}}
  {{range .Members}}<li>Member: {{.FullName}}{{if .Position}}, {{.Position}}{{end}}</li>{{end}}
</ul>
<p>has inspected the assets listed below and found them subject to write-off{{if .MainReason}} for the following reason: {{.MainReason}}{{end}}.</p>
{{with .ResponsiblePerson}}<p>Materially responsible person: {{.FullName}}{{if .Position}}, {{.Position}}{{end}}.</p>{{end}}

<table class="items">
  <thead>
    <tr>
      <th>No.</th><th>Inventory number</th><th>Name</th><th>Unit</th>
      <th>Quantity</th><th>Unit cost</th><th>Sum</th><th>Reason</th>
    </tr>
  </thead>
  <tbody>
    {{range .Items}}<tr>
      <td class="num">{{.Number}}</td>
      <td>{{.InventoryNumber}}</td>
      <td>{{.AssetTypeName}}</td>
      <td>{{.UnitOfMeasure}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{.UnitCost}}</td>
      <td class="num">{{.ItemSum}}</td>
      <td>{{.Reason}}</td>
    </tr>
    {{end}}<tr class="total">
      <td colspan="4">Total</td>
      <td class="num">{{.TotalQuantity}}</td>
      <td></td>
      <td class="num">{{.TotalSum}}</td>
      <td></td>
    </tr>
  </tbody>
</table>

{{if .Notes}}<p class="muted">Notes: {{.Notes}}</p>{{end}}

<div class="signatures">
  {{with .Chair}}<div class="sig"><span class="role">Commission chair<br><span class="muted">{{.Position}}</span></span><span class="line"></span><span class="name">{{.FullName}}</span></div>{{end}}
  {{range .Members}}<div class="sig"><span class="role">Commission member<br><span class="muted">{{.Position}}</span></span><span class="line"></span><span class="name">{{.FullName}}</span></div>{{end}}
  {{with .ChiefAccountant}}<div class="sig"><span class="role">Chief accountant<br><span class="muted">{{.Position}}</span></span><span class="line"></span><span class="name">{{.FullName}}</span></div>{{end}}
  {{with .ResponsiblePerson}}<div class="sig"><span class="role">Responsible person<br><span class="muted">{{.Position}}</span></span><span class="line"></span><span class="name">{{.FullName}}</span></div>{{end}}
</div>
</body>
</html>
`
