package domain

type PaymentMethod struct {
	Name     string
	Logo     string
	QRImage  string // empty when the method needs no scan-and-pay step
	BankName string
}

// RequiresQR reports whether the user must confirm an out-of-band QR payment before submitting.
func (m PaymentMethod) RequiresQR() bool { return m.QRImage != "" }

const DefaultPaymentMethod = "ABA PAY"

var PaymentMethods = []PaymentMethod{
	{Name: "ABA PAY", Logo: "/static/img/aba-pay-web.png", QRImage: "/static/qrcodes/aba_qr.jpg", BankName: "ABA PAY"},
	{Name: "Credit/Debit Card", Logo: "/static/img/credit-debit-card.png"},
	{Name: "ACLEDA PAY", Logo: "/static/img/xpay.png", QRImage: "/static/qrcodes/acleda_qr.png", BankName: "ACLEDA Bank"},
	{Name: "Wing Bank", Logo: "/static/img/Wing.png", QRImage: "/static/qrcodes/wing_qr.png", BankName: "Wing Bank"},
	{Name: "CHIP MONG BANK", Logo: "/static/img/chip-mong-bank.png", QRImage: "/static/qrcodes/chipmong_qr.png", BankName: "CHIP MONG Bank"},
	{Name: "Cash On Delivery", Logo: "/static/img/cod-kh-en.png"},
}

func LookupPaymentMethod(name string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if m.Name == name {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
